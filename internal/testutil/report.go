package testutil

import "encoding/json"

// Report mirrors the JSON document the application writes per output.
type Report struct {
	Output    string   `json:"output"`
	Attribute string   `json:"attribute"`
	Hash      string   `json:"hash"`
	Network   *Network `json:"network"`
}

// Network is the decoded form of an encoded network.
type Network struct {
	Output        *Parameter   `json:"output"`
	HasProxyNodes bool         `json:"hasProxyNodes"`
	Shaders       []Shader     `json:"shaders"`
	Connections   []Connection `json:"connections"`
}

type Parameter struct {
	Shader string `json:"shader"`
	Name   string `json:"name"`
}

type Value struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type Shader struct {
	Handle     string           `json:"handle"`
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Parameters map[string]Value `json:"parameters"`
	Blind      struct {
		Label     string     `json:"label"`
		NodeName  string     `json:"nodeName"`
		NodeColor [3]float64 `json:"nodeColor"`
	} `json:"blind"`
}

type Connection struct {
	Source      Parameter `json:"source"`
	Destination Parameter `json:"destination"`
}

// Handles returns the shader handles in network order.
func (n *Network) Handles() []string {
	handles := make([]string, len(n.Shaders))
	for i, s := range n.Shaders {
		handles[i] = s.Handle
	}
	return handles
}

// Shader returns the shader stored under handle.
func (n *Network) Shader(handle string) (Shader, bool) {
	for _, s := range n.Shaders {
		if s.Handle == handle {
			return s, true
		}
	}
	return Shader{}, false
}
