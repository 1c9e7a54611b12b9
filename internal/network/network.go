package network

import (
	"maps"
	"strconv"

	"github.com/vk/shadernet/internal/shading"
)

// Blind is metadata carried by a shader for display and debugging only. It
// never influences how a renderer evaluates the network.
type Blind struct {
	Label     string
	NodeName  string
	NodeColor [3]float64
}

// Shader is one shader instance of a flattened network.
type Shader struct {
	Name       string
	Type       string
	Parameters map[string]shading.Value
	Blind      Blind
}

// Parameter addresses a parameter of a shader instance by handle. An empty
// Name denotes the shader's sole output.
type Parameter struct {
	Shader string
	Name   string
}

// IsZero reports whether p is unset.
func (p Parameter) IsZero() bool {
	return p == Parameter{}
}

func (p Parameter) String() string {
	if p.Name == "" {
		return p.Shader
	}
	return p.Shader + "." + p.Name
}

// Connection feeds Source into Destination.
type Connection struct {
	Source      Parameter
	Destination Parameter
}

// Network is a flattened, renderer-agnostic shader network. Shaders are kept
// in insertion order, which the flattening engine guarantees is
// dependency-first.
//
// A Network is mutable while being assembled and sealed once returned to a
// caller; mutating a sealed Network panics.
type Network struct {
	order         []string
	shaders       map[string]*Shader
	connections   []Connection
	output        Parameter
	hasProxyNodes bool
	sealed        bool
}

// New returns an empty, unsealed network.
func New() *Network {
	return &Network{shaders: make(map[string]*Shader)}
}

func (n *Network) mutable() {
	if n.sealed {
		panic("network: mutation of a sealed network")
	}
}

// AddShader inserts s under a handle derived from preferred and returns the
// handle. If preferred is taken, a numeric suffix is appended: "A", "A1",
// "A2" and so on.
func (n *Network) AddShader(preferred string, s *Shader) string {
	n.mutable()
	if s.Parameters == nil {
		s.Parameters = make(map[string]shading.Value)
	}

	handle := n.uniqueHandle(preferred)
	n.order = append(n.order, handle)
	n.shaders[handle] = s
	return handle
}

func (n *Network) uniqueHandle(preferred string) string {
	if preferred == "" {
		preferred = "shader"
	}
	if _, taken := n.shaders[preferred]; !taken {
		return preferred
	}
	for i := 1; ; i++ {
		candidate := preferred + strconv.Itoa(i)
		if _, taken := n.shaders[candidate]; !taken {
			return candidate
		}
	}
}

// AddConnection records c. Endpoints are checked by Validate, not here.
func (n *Network) AddConnection(c Connection) {
	n.mutable()
	n.connections = append(n.connections, c)
}

// SetOutput sets the network's output parameter.
func (n *Network) SetOutput(p Parameter) {
	n.mutable()
	n.output = p
}

// SetHasProxyNodes marks the network as containing proxy shaders.
func (n *Network) SetHasProxyNodes(v bool) {
	n.mutable()
	n.hasProxyNodes = v
}

// Seal freezes the network. Sealing twice is harmless.
func (n *Network) Seal() *Network {
	n.sealed = true
	return n
}

// Sealed reports whether the network has been sealed.
func (n *Network) Sealed() bool {
	return n.sealed
}

// Len returns the number of shaders.
func (n *Network) Len() int {
	return len(n.order)
}

// Empty reports whether the network holds no shaders.
func (n *Network) Empty() bool {
	return len(n.order) == 0
}

// Handles returns the shader handles in insertion order.
func (n *Network) Handles() []string {
	return append([]string(nil), n.order...)
}

// Shader returns a copy of the shader stored under handle. Changing the
// copy, its parameters included, leaves the network untouched.
func (n *Network) Shader(handle string) (Shader, bool) {
	s, ok := n.shaders[handle]
	if !ok {
		return Shader{}, false
	}
	c := *s
	c.Parameters = maps.Clone(s.Parameters)
	return c, true
}

// Connections returns a copy of the connections in insertion order.
func (n *Network) Connections() []Connection {
	return append([]Connection(nil), n.connections...)
}

// InputConnections returns the connections whose destination is handle.
func (n *Network) InputConnections(handle string) []Connection {
	var out []Connection
	for _, c := range n.connections {
		if c.Destination.Shader == handle {
			out = append(out, c)
		}
	}
	return out
}

// Output returns the output parameter. It is zero for an empty network.
func (n *Network) Output() Parameter {
	return n.output
}

// HasProxyNodes reports whether any shader was produced by a proxy node.
func (n *Network) HasProxyNodes() bool {
	return n.hasProxyNodes
}
