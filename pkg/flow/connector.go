package flow

// ConnectorType is the role of a connector.
type ConnectorType string

const (
	ConnectorRegular   ConnectorType = "REGULAR"
	ConnectorDefault   ConnectorType = "DEFAULT"
	ConnectorFault     ConnectorType = "FAULT"
	ConnectorLoopNext  ConnectorType = "LOOP_NEXT"
	ConnectorLoopEnd   ConnectorType = "LOOP_END"
	ConnectorImmediate ConnectorType = "IMMEDIATE"
)

// Valid reports whether t is a known connector type.
func (t ConnectorType) Valid() bool {
	switch t {
	case ConnectorRegular, ConnectorDefault, ConnectorFault,
		ConnectorLoopNext, ConnectorLoopEnd, ConnectorImmediate:
		return true
	}
	return false
}

// Connector is a directed, typed edge between two elements. ChildSource,
// when set, names the child branch (decision outcome, wait event, scheduled
// path) the connector leaves from.
type Connector struct {
	GUID        string
	Source      string
	Target      string
	Type        ConnectorType
	ChildSource string
	Label       string
}

// Slot returns the source slot the connector occupies.
func (c *Connector) Slot() Slot { return Slot{Type: c.Type, ChildSource: c.ChildSource} }

// Clone returns a copy of c.
func (c *Connector) Clone() *Connector {
	cc := *c
	return &cc
}

// Slot is an outgoing attachment point of an element. A slot holds at most
// one connector.
type Slot struct {
	Type        ConnectorType
	ChildSource string
}

// Key returns a stable string form of s, used to key go-to jumps and slot
// indexes.
func (s Slot) Key() string {
	if s.ChildSource == "" {
		return string(s.Type)
	}
	return string(s.Type) + ":" + s.ChildSource
}

// defaultLabel returns the label given to connectors created for slot s when
// the caller provides none.
func defaultLabel(s Slot) string {
	switch s.Type {
	case ConnectorDefault:
		return "Default"
	case ConnectorFault:
		return "Fault"
	case ConnectorLoopNext:
		return "For Each"
	case ConnectorLoopEnd:
		return "After Last"
	case ConnectorImmediate:
		return "Run Immediately"
	}
	return ""
}
