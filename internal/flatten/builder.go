package flatten

import (
	"context"

	"github.com/vk/shadernet/internal/contenthash"
	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/literal"
	"github.com/vk/shadernet/internal/network"
	"github.com/vk/shadernet/internal/shading"
)

// Builder flattens the shading network feeding one output parameter.
//
// A Builder memoizes shader hashes and instances for its whole lifetime and
// is not safe for concurrent use. Create one per request; builders for
// different outputs of the same graph may run in parallel.
type Builder struct {
	graph    shading.Graph
	output   shading.ParamRef
	context  shading.Context
	registry *literal.Registry

	cycles        cycleDetector
	hashes        map[nodeKey]contenthash.Hash
	handles       map[handleKey]string
	sources       map[string]map[string]shading.ParamRef
	warned        map[shading.ParamRef]struct{}
	network       *network.Network
	hasProxyNodes bool

	result *network.Network
}

// Option configures a Builder.
type Option func(*Builder)

// WithContext sets the context the output is evaluated in. The default is
// the empty context.
func WithContext(c shading.Context) Option {
	return func(b *Builder) {
		b.context = c
	}
}

// WithRegistry sets the registry used to normalize literal values. The
// default is literal.Default().
func WithRegistry(r *literal.Registry) Option {
	return func(b *Builder) {
		b.registry = r
	}
}

// New creates a Builder for output, which may be an output of a shader
// node or an input parameter fed by one.
func New(graph shading.Graph, output shading.ParamRef, opts ...Option) *Builder {
	b := &Builder{
		graph:   graph,
		output:  output,
		hashes:  make(map[nodeKey]contenthash.Hash),
		handles: make(map[handleKey]string),
		sources: make(map[string]map[string]shading.ParamRef),
		warned:  make(map[shading.ParamRef]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = literal.Default()
	}
	return b
}

// Output returns the requested output parameter.
func (b *Builder) Output() shading.ParamRef {
	return b.output
}

// Context returns the context the output is evaluated in.
func (b *Builder) Context() shading.Context {
	return b.context
}

func (b *Builder) checkOutput() error {
	if !b.isParameter(b.output) {
		return &ConnectionTargetError{Parameter: b.output, Reason: "not a parameter of a shader node"}
	}
	return nil
}

// Network returns the sealed network feeding the output. If no enabled
// shader feeds it the network is empty. Repeated calls return the same
// network.
func (b *Builder) Network(ctx context.Context) (*network.Network, error) {
	if b.result != nil {
		return b.result, nil
	}
	if err := b.checkOutput(); err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, "output", b.output.String())
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Flattening shader network.", "context_hash", b.context.Hash().String())

	b.network = network.New()
	src, sc, ok := b.connectionSource(b.output, b.context)
	if !ok {
		logger.Debug("Output has no shader source.")
		b.result = b.network.Seal()
		return b.result, nil
	}

	out, err := b.outputParameter(ctx, src, sc)
	if err != nil {
		// Instances added so far belong to the discarded network.
		b.network = nil
		b.handles = make(map[handleKey]string)
		b.sources = make(map[string]map[string]shading.ParamRef)
		b.hasProxyNodes = false
		return nil, err
	}
	b.network.SetOutput(out)
	b.network.SetHasProxyNodes(b.hasProxyNodes)
	b.result = b.network.Seal()

	logger.Debug("Flattened shader network.", "shaders", b.result.Len(), "connections", len(b.result.Connections()))
	return b.result, nil
}

// Hash returns the content hash of the network feeding the output, without
// building it. It is the zero hash if no enabled shader feeds the output.
// Two outputs hash equally exactly when their networks are equivalent.
func (b *Builder) Hash(ctx context.Context) (contenthash.Hash, error) {
	if err := b.checkOutput(); err != nil {
		return contenthash.Hash{}, err
	}
	ctx = ctxlog.With(ctx, "output", b.output.String())
	src, sc, ok := b.connectionSource(b.output, b.context)
	if !ok {
		return contenthash.Hash{}, nil
	}
	ph, err := b.parameterHash(ctx, src, sc)
	if err != nil {
		return contenthash.Hash{}, err
	}
	return contenthash.New().AppendHash(ph).Sum(), nil
}

// ParameterSource maps a parameter of the built network back to the graph
// parameter it was read from. Network must have been called first.
func (b *Builder) ParameterSource(p network.Parameter) (shading.ParamRef, bool) {
	params, ok := b.sources[p.Shader]
	if !ok {
		return shading.ParamRef{}, false
	}
	ref, ok := params[p.Name]
	return ref, ok
}
