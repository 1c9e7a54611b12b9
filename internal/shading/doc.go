// Package shading defines the vocabulary shared between the flattening
// engine and the node graph that hosts shading nodes.
//
// # Why Shading Package Exists
//
// The flattening engine never sees concrete node classes. It addresses
// parameters through ParamRef values and asks a Graph implementation every
// question it needs answered: whether a reference is an input or an output,
// which upstream parameter drives it in a given Context, what literal value it
// holds, and how its parameter tree is shaped. Keeping these types in one
// small package lets hosts (the in-memory graph, the HCL loader, tests) and the
// engine evolve independently.
//
// # Contents
//
//   - Graph: the read-only host interface.
//   - ParamRef / NodeID: comparable references usable as map keys.
//   - Context: an immutable variable overlay with a stable hash.
//   - ParamKind: the tagged classification used to dispatch the walk.
//   - Value: a literal tagged with its type.
//   - Interpolation: spline interpolation modes and their endpoint rules.
package shading
