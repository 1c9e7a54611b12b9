// Package literal holds the type-tag registry used to validate and normalize
// literal parameter values before they are hashed or stored in a network.
//
// A Registry maps a type tag (see the shading.Type* constants) to a
// Converter. It is populated once, before any traversal starts, and is only
// read afterwards, so a single Registry can be shared by any number of
// concurrent builders.
package literal
