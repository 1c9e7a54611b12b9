// Package hclgraph loads shading graphs described in HCL into a
// memgraph.Graph.
//
// A file declares shader, switch, context_variables, dot and value blocks.
// Connections are traversals naming the source plug (`input = noise.out`);
// literal values, enabled states and switch indices are expressions that
// may read context variables (`enabled = context.frame > 10`).
package hclgraph
