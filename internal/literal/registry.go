package literal

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

// ErrUnknownType is returned by Convert for a tag with no converter.
var ErrUnknownType = errors.New("unknown literal type")

// Converter normalizes a raw value into the canonical representation of its
// type tag, or reports why it cannot.
type Converter func(v cty.Value) (cty.Value, error)

// Registry maps type tags to converters.
type Registry struct {
	converters map[string]Converter
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{converters: make(map[string]Converter)}
}

// Register adds a converter for tag. Registering the same tag twice is an
// error.
func (r *Registry) Register(tag string, c Converter) error {
	if tag == "" {
		return fmt.Errorf("literal type tag cannot be empty")
	}
	if c == nil {
		return fmt.Errorf("nil converter for literal type %q", tag)
	}
	if _, exists := r.converters[tag]; exists {
		return fmt.Errorf("literal type %q is already registered", tag)
	}
	r.converters[tag] = c
	return nil
}

// Lookup returns the converter registered for tag.
func (r *Registry) Lookup(tag string) (Converter, bool) {
	c, ok := r.converters[tag]
	return c, ok
}

// Tags returns all registered tags, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.converters))
	for tag := range r.converters {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Convert normalizes v through the converter registered for its tag.
func (r *Registry) Convert(v shading.Value) (shading.Value, error) {
	c, ok := r.converters[v.Type]
	if !ok {
		return shading.Value{}, fmt.Errorf("%w %q", ErrUnknownType, v.Type)
	}
	if v.Data.IsNull() {
		return shading.Value{}, fmt.Errorf("null value for literal type %q", v.Type)
	}
	if !v.Data.IsWhollyKnown() {
		return shading.Value{}, fmt.Errorf("unknown value for literal type %q", v.Type)
	}
	data, err := c(v.Data)
	if err != nil {
		return shading.Value{}, fmt.Errorf("converting %q literal: %w", v.Type, err)
	}
	return shading.Value{Type: v.Type, Data: data}, nil
}

// Default returns a registry populated with converters for every type tag
// declared in package shading that carries a literal.
func Default() *Registry {
	r := New()
	register := func(tag string, c Converter) {
		if err := r.Register(tag, c); err != nil {
			panic(err)
		}
	}

	register(shading.TypeFloat, primitive(cty.Number))
	register(shading.TypeInt, integer)
	register(shading.TypeBool, primitive(cty.Bool))
	register(shading.TypeString, primitive(cty.String))

	for _, tag := range []string{shading.TypeColor3f, shading.TypeColor4f, shading.TypeV2f, shading.TypeV3f} {
		register(tag, compound(shading.Components(tag), false))
	}
	for _, tag := range []string{shading.TypeV2i, shading.TypeV3i} {
		register(tag, compound(shading.Components(tag), true))
	}

	register(shading.TypeM44f, matrix(16))
	register(shading.TypeFloatVector, list(primitive(cty.Number), cty.Number))
	register(shading.TypeIntVector, list(integer, cty.Number))
	register(shading.TypeStringVector, list(primitive(cty.String), cty.String))
	register(shading.TypeColor3fVector, list(compound(shading.Components(shading.TypeColor3f), false), compoundType(shading.Components(shading.TypeColor3f))))
	register(shading.TypeV3fVector, list(compound(shading.Components(shading.TypeV3f), false), compoundType(shading.Components(shading.TypeV3f))))

	for _, tag := range []string{shading.TypeSplineff, shading.TypeSplinefColor3f, shading.TypeSplinefColor4f} {
		valueTag, _ := shading.SplineValueType(tag)
		c, _ := r.Lookup(valueTag)
		register(tag, spline(c, splineYType(valueTag)))
	}

	return r
}

func splineYType(valueTag string) cty.Type {
	if comps := shading.Components(valueTag); comps != nil {
		return compoundType(comps)
	}
	return cty.Number
}
