// Package network models the artifact produced by the flattening engine: an
// ordered collection of shader instances keyed by unique handles, the
// connections between their parameters, and the output parameter.
//
// Networks are built incrementally by the engine and sealed before they are
// handed out, after which they are read-only and safe to share between
// goroutines.
package network
