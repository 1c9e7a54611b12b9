package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/flatten"
	"github.com/vk/shadernet/internal/network"
	"github.com/vk/shadernet/internal/shading"
)

// Report is the result document written for one requested output.
type Report struct {
	Output    string           `json:"output"`
	Attribute string           `json:"attribute,omitempty"`
	Hash      string           `json:"hash"`
	Network   *network.Network `json:"network,omitempty"`
}

// Run loads the graph, flattens every configured output and writes one
// JSON report per output to the output writer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	graph, err := a.LoadGraph(ctx)
	if err != nil {
		return err
	}
	outputs, err := a.config.outputs()
	if err != nil {
		return err
	}
	c, err := a.config.context()
	if err != nil {
		return err
	}
	opts := []flatten.Option{flatten.WithContext(c)}

	reports := make([]Report, len(outputs))
	if a.config.HashOnly {
		for i, output := range outputs {
			reports[i] = Report{Output: output.String()}
		}
	} else {
		a.logger.Info("Flattening outputs...", "count", len(outputs), "workers", a.config.WorkerCount)
		results, err := flatten.FlattenAll(ctx, graph, outputs, a.config.Suffix, a.config.WorkerCount, opts...)
		if err != nil {
			return fmt.Errorf("flattening failed: %w", err)
		}
		for i, r := range results {
			if err := r.Network.Validate(); err != nil {
				return fmt.Errorf("invalid network for %s: %w", r.Output, err)
			}
			reports[i] = Report{Output: r.Output.String(), Attribute: r.Attribute, Network: r.Network}
		}
	}

	for i, output := range outputs {
		if err := a.fillAttribute(ctx, graph, output, c, &reports[i], opts); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", r.Output, err)
		}
	}

	a.logger.Info("Flattening finished.", "outputs", len(reports))
	a.logger.Debug("App.Run method finished.")
	return nil
}

// fillAttribute sets the attribute hash of r and, in hash-only mode, its
// attribute name. A zero hash means the network is empty and publishes
// nothing.
func (a *App) fillAttribute(ctx context.Context, graph shading.Graph, output shading.ParamRef, c shading.Context, r *Report, opts []flatten.Option) error {
	h, err := flatten.AttributesHash(ctx, graph, output, a.config.Suffix, opts...)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", output, err)
	}
	r.Hash = h.String()
	if a.config.HashOnly && !h.IsZero() {
		r.Attribute = flatten.AttributeName(graph, output, c, a.config.Suffix)
	}
	return nil
}
