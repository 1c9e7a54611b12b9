package flatten

import (
	"context"
	"fmt"

	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/network"
	"github.com/vk/shadernet/internal/shading"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of flattening one output in a batch. Attribute is
// empty when the network is.
type Result struct {
	Output    shading.ParamRef
	Attribute string
	Network   *network.Network
}

// FlattenAll flattens every output concurrently, as Attributes does with
// the given suffix, with at most workers
// builders running at once (unbounded if workers < 1). Each output gets
// its own Builder, so the graph must be safe for concurrent readers.
// Results are in the order of outputs. The first error cancels the
// remaining work and is returned.
func FlattenAll(ctx context.Context, graph shading.Graph, outputs []shading.ParamRef, suffix string, workers int, opts ...Option) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Flattening outputs.", "count", len(outputs), "workers", workers)

	results := make([]Result, len(outputs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, output := range outputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			attrs, err := Attributes(gctx, graph, output, suffix, opts...)
			if err != nil {
				return fmt.Errorf("flattening %s: %w", output, err)
			}
			r := Result{Output: output, Network: network.New().Seal()}
			for name, n := range attrs {
				r.Attribute, r.Network = name, n
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
