package dag

import (
	"fmt"
	"slices"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		inputs:  make(map[string][]string),
		outputs: make(map[string][]string),
	}
}

// AddNode adds id to the graph and reports whether it was new.
func (g *Graph) AddNode(id string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.inputs[id]; ok {
		return false
	}
	g.order = append(g.order, id)
	g.inputs[id] = nil
	g.outputs[id] = nil
	return true
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	_, ok := g.inputs[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.order)
}

// AddEdge adds an edge from -> to, meaning to consumes from. Adding an
// existing edge again is a no-op. Both nodes must exist and differ.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, from)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.inputs[from]; !ok {
		return fmt.Errorf("source node not found: %s", from)
	}
	if _, ok := g.inputs[to]; !ok {
		return fmt.Errorf("destination node not found: %s", to)
	}
	if slices.Contains(g.outputs[from], to) {
		return nil
	}
	g.outputs[from] = append(g.outputs[from], to)
	g.inputs[to] = append(g.inputs[to], from)
	return nil
}

// Inputs returns the nodes with an edge into id, in the order the edges
// were added.
func (g *Graph) Inputs(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	in, ok := g.inputs[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(in), nil
}

// Outputs returns the nodes id has an edge into, in the order the edges
// were added.
func (g *Graph) Outputs(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out, ok := g.outputs[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(out), nil
}

// DetectCycles returns a *CycleError for the first cycle found, visiting
// nodes in insertion order, or nil if the graph is acyclic.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(g.order))
	var stack []string

	var visit func(id string) *CycleError
	visit = func(id string) *CycleError {
		switch state[id] {
		case done:
			return nil
		case onStack:
			start := slices.Index(stack, id)
			path := append(slices.Clone(stack[start:]), id)
			return &CycleError{Path: path}
		}

		state[id] = onStack
		stack = append(stack, id)
		for _, next := range g.outputs[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Sort returns the nodes in an order where every node comes after all of
// its inputs. Among nodes that are ready at the same time, insertion order
// wins, so an already sorted insertion order is returned unchanged.
func (g *Graph) Sort() ([]string, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.order))
	for _, id := range g.order {
		pending[id] = len(g.inputs[id])
	}

	sorted := make([]string, 0, len(g.order))
	placed := make(map[string]bool, len(g.order))
	for len(sorted) < len(g.order) {
		for _, id := range g.order {
			if placed[id] || pending[id] > 0 {
				continue
			}
			placed[id] = true
			sorted = append(sorted, id)
			for _, next := range g.outputs[id] {
				pending[next]--
			}
			// Restart so earlier-inserted nodes unblocked by id go first.
			break
		}
	}
	return sorted, nil
}
