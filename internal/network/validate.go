package network

import (
	"errors"
	"fmt"

	"github.com/vk/shadernet/internal/dag"
)

// Validate checks the structural invariants of a network: every connection
// joins two present shaders, every source precedes its destination, the
// connections form no cycle, and the output (if set) names a present shader.
// All violations are reported, joined.
func (n *Network) Validate() error {
	var errs []error

	g := dag.New()
	position := make(map[string]int, len(n.order))
	for i, handle := range n.order {
		if _, dup := position[handle]; dup {
			errs = append(errs, fmt.Errorf("duplicate shader handle %q", handle))
			continue
		}
		position[handle] = i
		g.AddNode(handle)
	}

	for _, c := range n.connections {
		src, srcOK := position[c.Source.Shader]
		dst, dstOK := position[c.Destination.Shader]
		if !srcOK {
			errs = append(errs, fmt.Errorf("connection %s -> %s: source shader not found", c.Source, c.Destination))
		}
		if !dstOK {
			errs = append(errs, fmt.Errorf("connection %s -> %s: destination shader not found", c.Source, c.Destination))
		}
		if !srcOK || !dstOK {
			continue
		}
		if c.Destination.Name == "" {
			errs = append(errs, fmt.Errorf("connection %s -> %s: destination parameter is empty", c.Source, c.Destination))
		}
		if src >= dst {
			errs = append(errs, fmt.Errorf("connection %s -> %s: source is not inserted before destination", c.Source, c.Destination))
		}
		if c.Source.Shader == c.Destination.Shader {
			continue
		}
		if err := g.AddEdge(c.Source.Shader, c.Destination.Shader); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := g.Sort(); err != nil {
		errs = append(errs, err)
	}

	if !n.output.IsZero() {
		if _, ok := position[n.output.Shader]; !ok {
			errs = append(errs, fmt.Errorf("output shader %q not found", n.output.Shader))
		}
	} else if len(n.order) > 0 {
		errs = append(errs, errors.New("non-empty network has no output"))
	}

	return errors.Join(errs...)
}
