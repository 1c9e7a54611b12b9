package hclgraph

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all top-level blocks of a graph file.
type fileRoot struct {
	Shaders          []*shaderBlock           `hcl:"shader,block"`
	Switches         []*switchBlock           `hcl:"switch,block"`
	ContextVariables []*contextVariablesBlock `hcl:"context_variables,block"`
	Dots             []*dotBlock              `hcl:"dot,block"`
	Values           []*valueBlock            `hcl:"value,block"`
}

type shaderBlock struct {
	ID         string            `hcl:"id,label"`
	Name       string            `hcl:"name,optional"`
	Type       string            `hcl:"type,optional"`
	TypeTag    string            `hcl:"type_tag,optional"`
	Enabled    hcl.Expression    `hcl:"enabled,optional"`
	Color      []float64         `hcl:"color,optional"`
	Parameters []*parameterBlock `hcl:"parameter,block"`
	Outputs    []*outputBlock    `hcl:"output,block"`
}

// parameterBlock is recursive: struct and array parameters nest their
// members as parameter blocks.
type parameterBlock struct {
	Name          string            `hcl:"name,label"`
	Type          string            `hcl:"type,optional"`
	Value         hcl.Expression    `hcl:"value,optional"`
	Input         hcl.Expression    `hcl:"input,optional"`
	Array         bool              `hcl:"array,optional"`
	Optional      bool              `hcl:"optional,optional"`
	Enabled       hcl.Expression    `hcl:"enabled,optional"`
	Interpolation hcl.Expression    `hcl:"interpolation,optional"`
	Parameters    []*parameterBlock `hcl:"parameter,block"`
	Points        []*pointBlock     `hcl:"point,block"`
	Components    []*componentBlock `hcl:"component,block"`
}

type pointBlock struct {
	X          hcl.Expression    `hcl:"x"`
	Y          hcl.Expression    `hcl:"y"`
	Input      hcl.Expression    `hcl:"input,optional"`
	Components []*componentBlock `hcl:"component,block"`
}

// componentBlock connects a single lane of a compound value, e.g.
// component "r" { input = noise.out }.
type componentBlock struct {
	Name  string         `hcl:"name,label"`
	Input hcl.Expression `hcl:"input"`
}

type outputBlock struct {
	Name        string `hcl:"name,label"`
	Type        string `hcl:"type,optional"`
	PassThrough string `hcl:"pass_through,optional"`
}

type switchBlock struct {
	ID      string         `hcl:"id,label"`
	Index   hcl.Expression `hcl:"index,optional"`
	Enabled hcl.Expression `hcl:"enabled,optional"`
	Inputs  hcl.Expression `hcl:"inputs"`
}

type contextVariablesBlock struct {
	ID        string         `hcl:"id,label"`
	Variables hcl.Expression `hcl:"variables"`
	Enabled   hcl.Expression `hcl:"enabled,optional"`
	Input     hcl.Expression `hcl:"input,optional"`
}

type dotBlock struct {
	ID    string         `hcl:"id,label"`
	Input hcl.Expression `hcl:"input,optional"`
}

type valueBlock struct {
	ID    string         `hcl:"id,label"`
	Type  string         `hcl:"type"`
	Value hcl.Expression `hcl:"value"`
}
