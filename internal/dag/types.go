package dag

import (
	"errors"
	"strings"
	"sync"
)

// ErrCycle is wrapped by every CycleError.
var ErrCycle = errors.New("cycle detected")

// Graph is a directed graph of string IDs. Nodes remember their insertion
// order, which makes every traversal deterministic. All methods are safe
// for concurrent use.
type Graph struct {
	mutex sync.RWMutex
	order []string
	// inputs[id] are the nodes with an edge into id, outputs[id] the nodes
	// id has an edge into.
	inputs  map[string][]string
	outputs map[string][]string
}

// CycleError reports a cycle as the path that closes it, first node
// repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return ErrCycle.Error() + ": " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCycle }
