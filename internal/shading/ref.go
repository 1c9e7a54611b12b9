package shading

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// NodeID identifies a node within its host graph.
type NodeID string

// Well-known roots of a shader node's plug tree.
const (
	ParametersRoot = "parameters"
	OutRoot        = "out"
)

// ParamRef identifies one location in a node's plug tree. Path is relative
// to the node and dot separated, e.g. "parameters.color.r" or "out".
type ParamRef struct {
	Node NodeID
	Path string
}

// Ref is shorthand for constructing a ParamRef.
func Ref(node NodeID, path string) ParamRef {
	return ParamRef{Node: node, Path: path}
}

// IsZero reports whether r is the zero reference.
func (r ParamRef) IsZero() bool {
	return r == ParamRef{}
}

// String returns the canonical "node.path" form.
func (r ParamRef) String() string {
	if r.Path == "" {
		return string(r.Node)
	}
	return string(r.Node) + "." + r.Path
}

// Name returns the last segment of the path.
func (r ParamRef) Name() string {
	if i := strings.LastIndexByte(r.Path, '.'); i >= 0 {
		return r.Path[i+1:]
	}
	return r.Path
}

// Child returns the reference to the named child of r.
func (r ParamRef) Child(name string) ParamRef {
	if r.Path == "" {
		return ParamRef{Node: r.Node, Path: name}
	}
	return ParamRef{Node: r.Node, Path: r.Path + "." + name}
}

// Parent returns the parent of r, or false if r is a root.
func (r ParamRef) Parent() (ParamRef, bool) {
	i := strings.LastIndexByte(r.Path, '.')
	if i < 0 {
		return ParamRef{}, false
	}
	return ParamRef{Node: r.Node, Path: r.Path[:i]}, true
}

// IsAncestorOf reports whether other is a strict descendant of r.
func (r ParamRef) IsAncestorOf(other ParamRef) bool {
	return r.Node == other.Node && strings.HasPrefix(other.Path, r.Path+".")
}

// RelativeTo returns the path of r relative to ancestor. The boolean is
// false if ancestor is not an ancestor of r.
func (r ParamRef) RelativeTo(ancestor ParamRef) (string, bool) {
	if !ancestor.IsAncestorOf(r) {
		return "", false
	}
	return r.Path[len(ancestor.Path)+1:], true
}

// validSegment reports whether s can appear in a graph traversal: an HCL
// identifier, or an array index.
func validSegment(s string) bool {
	if _, err := strconv.ParseUint(s, 10, 0); err == nil {
		return true
	}
	return hclsyntax.ValidIdentifier(s)
}

// ParseParamRef parses the canonical "node.path" form. The first segment is
// the node, the rest is the path within the node.
func ParseParamRef(raw string) (ParamRef, error) {
	if raw == "" {
		return ParamRef{}, fmt.Errorf("parameter reference cannot be empty")
	}

	segments := strings.Split(raw, ".")
	for _, segment := range segments {
		if segment == "" {
			return ParamRef{}, fmt.Errorf("parameter reference %q contains empty segment", raw)
		}
		if !validSegment(segment) {
			return ParamRef{}, fmt.Errorf("invalid segment %q in parameter reference %q", segment, raw)
		}
	}
	if len(segments) < 2 {
		return ParamRef{}, fmt.Errorf("parameter reference %q must name a node and a plug", raw)
	}

	return ParamRef{Node: NodeID(segments[0]), Path: strings.Join(segments[1:], ".")}, nil
}
