// Package memgraph is an in-memory, editable node graph that implements the
// host interface the flattening engine reads (shading.Graph).
//
// Shader nodes carry a "parameters" plug tree and an "out" plug tree. Three
// kinds of routing node may sit between shaders: switches, which select one
// of their inputs by an index evaluated in the current context; context
// variable nodes, which add variables to the context their input is
// evaluated in; and dots, which do nothing. Value nodes hold a literal that
// can feed any parameter.
//
// Plug values and enabled states are Exprs: either constants or HCL
// expressions that read context variables through the "context" object,
// e.g. `context.frame > 10`.
package memgraph
