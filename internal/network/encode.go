package network

import (
	"encoding/json"
	"fmt"
	"sort"

	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type jsonParameter struct {
	Shader string `json:"shader"`
	Name   string `json:"name,omitempty"`
}

type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type jsonBlind struct {
	Label     string     `json:"label"`
	NodeName  string     `json:"nodeName"`
	NodeColor [3]float64 `json:"nodeColor"`
}

type jsonShader struct {
	Handle     string               `json:"handle"`
	Name       string               `json:"name"`
	Type       string               `json:"type"`
	Parameters map[string]jsonValue `json:"parameters"`
	Blind      jsonBlind            `json:"blind"`
}

type jsonConnection struct {
	Source      jsonParameter `json:"source"`
	Destination jsonParameter `json:"destination"`
}

type jsonNetwork struct {
	Output        *jsonParameter   `json:"output,omitempty"`
	HasProxyNodes bool             `json:"hasProxyNodes,omitempty"`
	Shaders       []jsonShader     `json:"shaders"`
	Connections   []jsonConnection `json:"connections"`
}

// MarshalJSON encodes the network with shaders in insertion order. Literal
// values are encoded by go-cty next to their type tag.
func (n *Network) MarshalJSON() ([]byte, error) {
	out := jsonNetwork{
		HasProxyNodes: n.hasProxyNodes,
		Shaders:       make([]jsonShader, 0, len(n.order)),
		Connections:   make([]jsonConnection, 0, len(n.connections)),
	}
	if !n.output.IsZero() {
		out.Output = &jsonParameter{Shader: n.output.Shader, Name: n.output.Name}
	}

	for _, handle := range n.order {
		s := n.shaders[handle]
		js := jsonShader{
			Handle:     handle,
			Name:       s.Name,
			Type:       s.Type,
			Parameters: make(map[string]jsonValue, len(s.Parameters)),
			Blind: jsonBlind{
				Label:     s.Blind.Label,
				NodeName:  s.Blind.NodeName,
				NodeColor: s.Blind.NodeColor,
			},
		}

		names := make([]string, 0, len(s.Parameters))
		for name := range s.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := s.Parameters[name]
			raw, err := ctyjson.Marshal(v.Data, v.Data.Type())
			if err != nil {
				return nil, fmt.Errorf("encoding parameter %q of shader %q: %w", name, handle, err)
			}
			js.Parameters[name] = jsonValue{Type: v.Type, Value: raw}
		}
		out.Shaders = append(out.Shaders, js)
	}

	for _, c := range n.connections {
		out.Connections = append(out.Connections, jsonConnection{
			Source:      jsonParameter{Shader: c.Source.Shader, Name: c.Source.Name},
			Destination: jsonParameter{Shader: c.Destination.Shader, Name: c.Destination.Name},
		})
	}

	return json.Marshal(out)
}
