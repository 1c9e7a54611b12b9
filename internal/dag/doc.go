// Package dag provides a small, concurrency-safe directed graph keyed by
// string IDs, with cycle reporting and a stable topological sort.
//
// The network package builds one from a flattened network's shader handles
// and connections to check that the network is acyclic and already in
// dependency order before it is handed to a renderer backend.
package dag
