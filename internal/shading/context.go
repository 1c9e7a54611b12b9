package shading

import (
	"sort"

	"github.com/vk/shadernet/internal/contenthash"
	"github.com/zclconf/go-cty/cty"
)

// Context is an immutable overlay of named variables (frame, custom values)
// in effect while a parameter is resolved. The zero Context is empty and
// ready to use.
type Context struct {
	vars map[string]cty.Value
	hash contenthash.Hash
}

// NewContext returns a context holding a copy of vars.
func NewContext(vars map[string]cty.Value) Context {
	c := Context{vars: make(map[string]cty.Value, len(vars))}
	for k, v := range vars {
		c.vars[k] = v
	}
	c.hash = hashVariables(c.vars)
	return c
}

// With returns a new context with name set to value. The receiver is not
// modified.
func (c Context) With(name string, value cty.Value) Context {
	vars := make(map[string]cty.Value, len(c.vars)+1)
	for k, v := range c.vars {
		vars[k] = v
	}
	vars[name] = value
	return Context{vars: vars, hash: hashVariables(vars)}
}

// Get returns the named variable.
func (c Context) Get(name string) (cty.Value, bool) {
	v, ok := c.vars[name]
	return v, ok
}

// Len returns the number of variables.
func (c Context) Len() int {
	return len(c.vars)
}

// Names returns the variable names in sorted order.
func (c Context) Names() []string {
	names := make([]string, 0, len(c.vars))
	for k := range c.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Object returns the variables as a cty object, suitable for use as the
// "context" variable of an HCL evaluation context.
func (c Context) Object() cty.Value {
	if len(c.vars) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(c.vars)
}

// Hash returns a stable hash of the variables. Two contexts holding equal
// variables hash equally regardless of how they were built.
func (c Context) Hash() contenthash.Hash {
	if c.vars == nil {
		return emptyContextHash
	}
	return c.hash
}

// Equal reports whether both contexts hold the same variables.
func (c Context) Equal(other Context) bool {
	return c.Hash() == other.Hash()
}

var emptyContextHash = hashVariables(nil)

func hashVariables(vars map[string]cty.Value) contenthash.Hash {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)

	h := contenthash.New()
	h.AppendInt(int64(len(names)))
	for _, name := range names {
		h.AppendString(name)
		if err := h.AppendValue(vars[name]); err != nil {
			h.AppendString(vars[name].GoString())
		}
	}
	return h.Sum()
}
