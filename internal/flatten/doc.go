// Package flatten turns the node graph feeding a shader output into a
// flat, deduplicated network.Network.
//
// # Overview
//
// A Builder starts at the requested output and resolves its ultimate
// shader source through disabled nodes, switches and context overrides.
// Every shader node reached is identified by a content hash of its type,
// metadata, literal parameter values and upstream hashes. The hash is the
// dedup key: a node evaluated in two contexts that hash equally yields one
// shader instance, while two different nodes never share one.
//
// # Walks
//
// Hashing and building traverse the parameter tree with the same walk and
// differ only in what they do with values and connections, so they always
// agree on parameter names. Spline parameters whose point values are driven
// by shaders are expanded into per-point connections ("ramp[2].y"),
// repeating endpoint connections for interpolations that duplicate
// endpoints.
//
// # Errors
//
// A shader reachable from itself in the same context is a dependency cycle.
// Reaching it again in a different context is not. Errors wrap
// ErrDependencyCycle, ErrUnsupportedInterpolation or
// ErrInvalidConnectionTarget and never leave a partial network behind.
package flatten
