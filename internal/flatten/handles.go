package flatten

import (
	"context"
	"strings"

	"github.com/vk/shadernet/internal/contenthash"
	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/network"
	"github.com/vk/shadernet/internal/shading"
)

// handleKey deduplicates shader instances. Two evaluations of the same
// node share an instance when they hash equally, whatever their contexts.
// Different nodes never share one.
type handleKey struct {
	node shading.NodeID
	hash contenthash.Hash
}

// handle returns the handle of the shader instance for node in c, building
// and inserting it (after all of its dependencies) on first use.
func (b *Builder) handle(ctx context.Context, node shading.NodeID, c shading.Context) (string, error) {
	sh, err := b.shaderHash(ctx, node, c)
	if err != nil {
		return "", err
	}
	key := handleKey{node: node, hash: sh}
	if handle, ok := b.handles[key]; ok {
		return handle, nil
	}

	info := b.graph.NodeInfo(node, c)
	shader := &network.Shader{
		Name:       info.Name,
		Type:       info.Type,
		Parameters: make(map[string]shading.Value),
		Blind: network.Blind{
			Label:     info.NodeName,
			NodeName:  info.NodeName,
			NodeColor: info.Color,
		},
	}
	if !info.IsProxy() && node != b.output.Node && !strings.HasSuffix(shader.Type, "shader") {
		shader.Type = coerceToShaderType(shader.Type)
	}
	if info.IsProxy() {
		b.hasProxyNodes = true
	}

	sink := &buildSink{b: b, shader: shader, sources: make(map[string]shading.ParamRef)}
	if err := b.walk(ctx, b.graph.Parameters(node), "", c, sink, false, false); err != nil {
		return "", err
	}

	handle := b.network.AddShader(info.NodeName, shader)
	for _, pc := range sink.connections {
		b.network.AddConnection(network.Connection{
			Source:      pc.source,
			Destination: network.Parameter{Shader: handle, Name: pc.dest},
		})
	}
	b.handles[key] = handle
	b.sources[handle] = sink.sources

	ctxlog.FromContext(ctx).Debug("Added shader.", "node", string(node), "handle", handle, "type", shader.Type, "connections", len(sink.connections))
	return handle, nil
}

// coerceToShaderType turns a surface-like type into a plain shader type so
// it can feed another shader, keeping any renderer prefix:
// "osl:surface" becomes "osl:shader", "surface" becomes "shader".
func coerceToShaderType(t string) string {
	if i := strings.IndexByte(t, ':'); i >= 0 {
		return t[:i+1] + "shader"
	}
	return "shader"
}

// outputParameter returns the network parameter for a shader output,
// instantiating the shader if needed. When out is a container the name is
// relative to it; otherwise it is the output's path on the node ("out").
func (b *Builder) outputParameter(ctx context.Context, output shading.ParamRef, c shading.Context) (network.Parameter, error) {
	handle, err := b.handle(ctx, output.Node, c)
	if err != nil {
		return network.Parameter{}, err
	}
	out := b.graph.Out(output.Node)
	name := output.Path
	if b.graph.Kind(out) == shading.KindStruct && output != out {
		if rel, ok := output.RelativeTo(out); ok {
			name = rel
		}
	}
	return network.Parameter{Shader: handle, Name: name}, nil
}

type pendingConnection struct {
	source network.Parameter
	dest   string
}

type buildSink struct {
	b           *Builder
	shader      *network.Shader
	connections []pendingConnection
	sources     map[string]shading.ParamRef
}

func (s *buildSink) enter(name string, ref shading.ParamRef) {
	if name != "" {
		s.sources[name] = ref
	}
}

func (s *buildSink) value(name string, v shading.Value) {
	s.shader.Parameters[name] = v
}

func (s *buildSink) connection(ctx context.Context, name string, source shading.ParamRef, sc shading.Context) error {
	param, err := s.b.outputParameter(ctx, source, sc)
	if err != nil {
		return err
	}
	s.connections = append(s.connections, pendingConnection{source: param, dest: name})
	return nil
}

func (s *buildSink) spline(ctx context.Context, name string, ref shading.ParamRef, c shading.Context) error {
	return s.b.addSplineConnections(ctx, name, ref, c, func(source network.Parameter, dest string) {
		s.connections = append(s.connections, pendingConnection{source: source, dest: dest})
	})
}
