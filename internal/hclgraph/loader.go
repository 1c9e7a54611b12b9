package hclgraph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/fsutil"
	"github.com/vk/shadernet/internal/memgraph"
)

// Loader reads shading graphs from HCL files.
type Loader struct{}

// NewLoader creates a new HCL graph loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths (files or directories) into
// a single graph. Nodes may reference nodes declared in other files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*memgraph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL graph loader started.", "path_count", len(paths))

	files, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	t := &translator{graph: memgraph.New()}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := t.translateBody(ctx, hclFile.Body); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
	}

	t.linkAll(ctx)
	if t.diags.HasErrors() {
		return nil, fmt.Errorf("failed to link graph: %w", t.diags)
	}

	logger.Debug("HCL graph loading complete.", "nodes", len(t.graph.Nodes()), "connections", len(t.links))
	return t.graph, nil
}

// LoadBytes parses a single in-memory HCL document. filename is used in
// diagnostics only.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*memgraph.Graph, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	t := &translator{graph: memgraph.New()}
	if err := t.translateBody(ctx, hclFile.Body); err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}
	t.linkAll(ctx)
	if t.diags.HasErrors() {
		return nil, fmt.Errorf("failed to link graph: %w", t.diags)
	}
	return t.graph, nil
}

// translateBody creates the nodes of one file. Diagnostics are collected on
// the translator; decoding errors are returned at once.
func (t *translator) translateBody(ctx context.Context, body hcl.Body) error {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return diags
	}

	for _, b := range root.Shaders {
		t.addShader(ctx, b)
	}
	for _, b := range root.Switches {
		t.addSwitch(b)
	}
	for _, b := range root.ContextVariables {
		t.addContextVariables(b)
	}
	for _, b := range root.Dots {
		t.addDot(b)
	}
	for _, b := range root.Values {
		t.addValue(b)
	}

	if t.diags.HasErrors() {
		return t.diags
	}
	return nil
}

// findAllHCLFiles returns the .hcl files named by or found under paths,
// without duplicates.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if strings.EqualFold(filepath.Ext(path), ".hcl") {
				add(path)
			}
			continue
		}

		found, err := fsutil.FindFiles(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
