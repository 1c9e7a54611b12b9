package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string   // hcl file or directory
	Outputs   []string // "node.out" style references
	Suffix    string   // attribute suffix
	Variables []string // "name=value" context variables

	LogFormat   string
	LogLevel    string
	WorkerCount int
	HashOnly    bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if len(cfg.Outputs) == 0 {
		return nil, errors.New("at least one output is required")
	}
	for _, raw := range cfg.Outputs {
		if _, err := shading.ParseParamRef(raw); err != nil {
			return nil, fmt.Errorf("invalid output: %w", err)
		}
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("worker count cannot be negative, got %d", cfg.WorkerCount)
	}
	if _, err := parseVariables(cfg.Variables); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// outputs returns the configured outputs as parameter references.
func (c *Config) outputs() ([]shading.ParamRef, error) {
	refs := make([]shading.ParamRef, len(c.Outputs))
	for i, raw := range c.Outputs {
		r, err := shading.ParseParamRef(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid output: %w", err)
		}
		refs[i] = r
	}
	return refs, nil
}

// context returns the evaluation context built from the configured
// variables.
func (c *Config) context() (shading.Context, error) {
	vars, err := parseVariables(c.Variables)
	if err != nil {
		return shading.Context{}, err
	}
	return shading.NewContext(vars), nil
}

// parseVariables parses "name=value" pairs. The value is read as an HCL
// expression (frame=10, weights=[1, 2]); anything that does not evaluate on
// its own is taken as a plain string (variant=wet).
func parseVariables(pairs []string) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || !hclsyntax.ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid variable %q: expected name=value", pair)
		}
		vars[name] = variableValue(raw)
	}
	return vars, nil
}

func variableValue(raw string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "variable", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(raw)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() || v.IsNull() {
		return cty.StringVal(raw)
	}
	return v
}
