package flatten

import (
	"context"
	"strconv"

	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/shading"
)

// parameterSink receives what the parameter walk finds. The hash sink folds
// it into a content hash, the build sink into a shader instance, so both
// modes share one traversal and therefore one naming scheme.
type parameterSink interface {
	// enter is called for every parameter visited, before anything else.
	enter(name string, ref shading.ParamRef)
	value(name string, v shading.Value)
	connection(ctx context.Context, name string, source shading.ParamRef, sc shading.Context) error
	spline(ctx context.Context, name string, ref shading.ParamRef, c shading.Context) error
}

// walk visits param and its descendants. Once both a value and a
// connection have been found on a path, nothing below it is visited.
//
// Children are named "parent.child" for struct fields and compound lanes
// and "parent[i]" for array elements. Disabled optional parameters are
// skipped and do not consume an array index.
func (b *Builder) walk(ctx context.Context, param shading.ParamRef, name string, c shading.Context, sink parameterSink, foundValue, foundConnection bool) error {
	sink.enter(name, param)

	if !foundValue {
		if v, ok := b.literal(ctx, param, c); ok {
			sink.value(name, v)
			foundValue = true
		}
	}

	if !foundConnection {
		if src, sc, ok := b.connectionSource(param, c); ok {
			if err := sink.connection(ctx, name, src, sc); err != nil {
				return err
			}
			foundConnection = true
		}
	}

	if foundValue && foundConnection {
		return nil
	}

	kind := b.graph.Kind(param)
	if kind == shading.KindSpline {
		return sink.spline(ctx, name, param, c)
	}

	arrayIndex := 0
	for _, child := range b.graph.Children(param) {
		valueRef := child
		if b.graph.Kind(child) == shading.KindOptional {
			v, enabled := b.graph.OptionalValue(child, c)
			if !enabled {
				continue
			}
			valueRef = v
		}

		var childName string
		switch {
		case kind == shading.KindArray:
			childName = name + "[" + strconv.Itoa(arrayIndex) + "]"
			arrayIndex++
		case name == "":
			childName = child.Name()
		default:
			childName = name + "." + child.Name()
		}

		if err := b.walk(ctx, valueRef, childName, c, sink, foundValue, foundConnection); err != nil {
			return err
		}
	}
	return nil
}

// literal returns the normalized literal held by ref in c. Values whose
// type tag is unknown or that fail to convert are logged and skipped.
func (b *Builder) literal(ctx context.Context, ref shading.ParamRef, c shading.Context) (shading.Value, bool) {
	v, ok := b.graph.LiteralValue(ref, c)
	if !ok || v.Type == "" {
		return shading.Value{}, false
	}
	out, err := b.registry.Convert(v)
	if err != nil {
		if _, warned := b.warned[ref]; !warned {
			b.warned[ref] = struct{}{}
			ctxlog.FromContext(ctx).Warn("Skipping parameter value.", "parameter", ref.String(), "type", v.Type, "error", err)
		}
		return shading.Value{}, false
	}
	return out, true
}
