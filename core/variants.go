package core

// Source is the node or link an event originated from, together with the
// screen anchor the topology reported when the event was created.
type Source interface {
	Anchor() Point
	isSource()
}

// NodeSource is an event produced by a node.
type NodeSource struct {
	NodeID string
	At     Point
}

// Anchor returns the node position.
func (s NodeSource) Anchor() Point { return s.At }

func (NodeSource) isSource() {}

// LinkSource is an event produced on a link between two node anchors.
type LinkSource struct {
	LinkID string
	Head   Point
	Tail   Point
}

// Anchor returns the link midpoint.
func (s LinkSource) Anchor() Point { return s.Head.Midpoint(s.Tail) }

func (LinkSource) isSource() {}

// Payload carries subtype specific data.
type Payload interface {
	isPayload()
}

// NoPayload marks events without extra data.
type NoPayload struct{}

// PacketPayload identifies the packet family of packet events.
type PacketPayload struct {
	Kind PacketKind
}

// TransitPayload describes a packet in flight; Percent is 0..100 of the link.
type TransitPayload struct {
	Kind    PacketKind
	Percent int
}

// CongestionPayload reports a node congestion level in percent.
type CongestionPayload struct {
	Level int
}

func (NoPayload) isPayload()         {}
func (PacketPayload) isPayload()     {}
func (TransitPayload) isPayload()    {}
func (CongestionPayload) isPayload() {}
