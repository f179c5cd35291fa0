package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Subtype represents the kind of observable occurrence an event reports.
type Subtype string

const (
	PacketGenerated Subtype = "PacketGenerated"
	PacketSent      Subtype = "PacketSent"
	PacketReceived  Subtype = "PacketReceived"
	PacketSwitched  Subtype = "PacketSwitched"
	PacketRouted    Subtype = "PacketRouted"
	PacketOnFly     Subtype = "PacketOnFly"
	PacketDiscarded Subtype = "PacketDiscarded"
	NodeCongested   Subtype = "NodeCongested"
	LinkBroken      Subtype = "LinkBroken"
	LinkRecovered   Subtype = "LinkRecovered"
	LspEstablished  Subtype = "LspEstablished"
)

// Placement tells the renderer where an event marker goes.
type Placement int

const (
	PlaceNone      Placement = iota // no marker; the event only affects overlays
	PlaceAlongLink                  // interpolated along the link by transit percent
	PlaceNearNode                   // node anchor plus the subtype offset
	PlaceNearLink                   // link midpoint plus the subtype offset
)

type sourceClass int

const (
	sourceNode sourceClass = iota
	sourceLink
)

type payloadClass int

const (
	payloadNone payloadClass = iota
	payloadPacket
	payloadTransit
	payloadCongestion
)

type subtypeInfo struct {
	caption   string
	placement Placement
	offset    Point
	source    sourceClass
	payload   payloadClass
}

// Marker offsets keep glyphs clear of the 24px node icon and the link stroke.
var subtypes = map[Subtype]subtypeInfo{
	PacketGenerated: {caption: "Packet generated", placement: PlaceNearNode, offset: Pt(-20, -20), source: sourceNode, payload: payloadPacket},
	PacketSent:      {caption: "Packet sent", placement: PlaceNearNode, offset: Pt(20, -20), source: sourceNode, payload: payloadPacket},
	PacketReceived:  {caption: "Packet received", placement: PlaceNearNode, offset: Pt(20, 20), source: sourceNode, payload: payloadPacket},
	PacketSwitched:  {caption: "Packet switched", placement: PlaceNearNode, offset: Pt(-20, 20), source: sourceNode, payload: payloadPacket},
	PacketRouted:    {caption: "Packet routed", placement: PlaceNearNode, offset: Pt(0, -26), source: sourceNode, payload: payloadPacket},
	PacketOnFly:     {caption: "Packet in transit", placement: PlaceAlongLink, source: sourceLink, payload: payloadTransit},
	PacketDiscarded: {caption: "Packet discarded", placement: PlaceNearNode, offset: Pt(26, 0), source: sourceNode, payload: payloadPacket},
	NodeCongested:   {caption: "Node congested", placement: PlaceNone, source: sourceNode, payload: payloadCongestion},
	LinkBroken:      {caption: "Link broken", placement: PlaceNearLink, offset: Pt(0, -14), source: sourceLink, payload: payloadNone},
	LinkRecovered:   {caption: "Link recovered", placement: PlaceNearLink, offset: Pt(0, -14), source: sourceLink, payload: payloadNone},
	LspEstablished:  {caption: "LSP established", placement: PlaceNone, source: sourceNode, payload: payloadNone},
}

// AllSubtypes lists subtypes in legend order.
func AllSubtypes() []Subtype {
	return []Subtype{
		PacketGenerated, PacketSent, PacketReceived, PacketSwitched, PacketRouted,
		PacketOnFly, PacketDiscarded, NodeCongested, LinkBroken, LinkRecovered, LspEstablished,
	}
}

// Valid reports whether s is a known subtype.
func (s Subtype) Valid() bool {
	_, ok := subtypes[s]
	return ok
}

// Caption returns the legend caption.
func (s Subtype) Caption() string {
	if info, ok := subtypes[s]; ok {
		return info.caption
	}
	return string(s)
}

// Placement returns where markers of this subtype are drawn.
func (s Subtype) Placement() Placement {
	return subtypes[s].placement
}

// HasMarker reports whether the renderer draws a marker for this subtype.
func (s Subtype) HasMarker() bool {
	return s.Valid() && s.Placement() != PlaceNone
}

// OnLink reports whether events of this subtype originate from a link.
func (s Subtype) OnLink() bool {
	return subtypes[s].source == sourceLink
}

// BuildPayload returns the payload variant the subtype carries, filled from
// flat trace fields. The fields the subtype does not use are ignored.
func (s Subtype) BuildPayload(packet PacketKind, percent, level int) Payload {
	switch subtypes[s].payload {
	case payloadPacket:
		return PacketPayload{Kind: packet}
	case payloadTransit:
		return TransitPayload{Kind: packet, Percent: percent}
	case payloadCongestion:
		return CongestionPayload{Level: level}
	default:
		return NoPayload{}
	}
}

// IconKey returns the generic marker glyph for the subtype, used by the legend.
func (s Subtype) IconKey() IconKey {
	return IconKey{Group: IconGroupEvent, Name: string(s)}
}

var (
	ErrUnknownSubtype  = errors.New("unknown event subtype")
	ErrNoSource        = errors.New("event has no source")
	ErrSourceMismatch  = errors.New("event source does not match subtype")
	ErrPayloadMismatch = errors.New("event payload does not match subtype")
)

// Event represents one observable occurrence at a simulation tick. Events are
// values with unexported fields; nothing can change them after NewEvent.
type Event struct {
	tick    int64
	subtype Subtype
	source  Source
	payload Payload
}

// NewEvent builds an event. Negative ticks are clamped to zero and a nil
// payload becomes NoPayload.
func NewEvent(tick int64, subtype Subtype, source Source, payload Payload) Event {
	if tick < 0 {
		tick = 0
	}
	if payload == nil {
		payload = NoPayload{}
	}
	return Event{tick: tick, subtype: subtype, source: source, payload: payload}
}

// Tick returns the simulation tick of the event.
func (e Event) Tick() int64 { return e.tick }

// Subtype returns the event subtype.
func (e Event) Subtype() Subtype { return e.subtype }

// Source returns the node or link that produced the event (may be nil).
func (e Event) Source() Source { return e.source }

// Payload returns the subtype specific payload.
func (e Event) Payload() Payload { return e.payload }

// Validate checks that source and payload match what the subtype expects.
func (e Event) Validate() error {
	info, ok := subtypes[e.subtype]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSubtype, e.subtype)
	}
	if e.source == nil {
		return fmt.Errorf("%s: %w", e.subtype, ErrNoSource)
	}
	switch e.source.(type) {
	case NodeSource:
		if info.source != sourceNode {
			return fmt.Errorf("%s from node: %w", e.subtype, ErrSourceMismatch)
		}
	case LinkSource:
		if info.source != sourceLink {
			return fmt.Errorf("%s from link: %w", e.subtype, ErrSourceMismatch)
		}
	}
	var got payloadClass
	switch p := e.payload.(type) {
	case NoPayload:
		got = payloadNone
	case PacketPayload:
		got = payloadPacket
		if !p.Kind.Valid() {
			return fmt.Errorf("%s packet kind %q: %w", e.subtype, p.Kind, ErrPayloadMismatch)
		}
	case TransitPayload:
		got = payloadTransit
		if !p.Kind.Valid() || p.Percent < 0 || p.Percent > 100 {
			return fmt.Errorf("%s transit %q %d%%: %w", e.subtype, p.Kind, p.Percent, ErrPayloadMismatch)
		}
	case CongestionPayload:
		got = payloadCongestion
	default:
		return fmt.Errorf("%s payload %T: %w", e.subtype, e.payload, ErrPayloadMismatch)
	}
	if got != info.payload {
		return fmt.Errorf("%s payload %T: %w", e.subtype, e.payload, ErrPayloadMismatch)
	}
	return nil
}

// MarkerKey returns the glyph for this event, keyed by subtype and the payload
// discriminator. In-flight packets use the packet glyph itself.
func (e Event) MarkerKey() IconKey {
	switch p := e.payload.(type) {
	case TransitPayload:
		return p.Kind.IconKey()
	case PacketPayload:
		return IconKey{Group: IconGroupEvent, Name: string(e.subtype), Variant: string(p.Kind)}
	default:
		return e.subtype.IconKey()
	}
}

// MarkerAnchor returns where the marker is centered. ok is false for subtypes
// without a marker.
func (e Event) MarkerAnchor() (Point, bool, error) {
	if err := e.Validate(); err != nil {
		return Point{}, false, err
	}
	info := subtypes[e.subtype]
	switch info.placement {
	case PlaceAlongLink:
		link := e.source.(LinkSource)
		t := float64(e.payload.(TransitPayload).Percent) / 100
		return link.Head.Lerp(link.Tail, t), true, nil
	case PlaceNearNode, PlaceNearLink:
		return e.source.Anchor().Add(info.offset), true, nil
	default:
		return Point{}, false, nil
	}
}

// MarshalJSON renders a flat view of the event for the state API.
func (e Event) MarshalJSON() ([]byte, error) {
	view := struct {
		Tick    int64   `json:"tick"`
		Type    Subtype `json:"type"`
		Node    string  `json:"node,omitempty"`
		Link    string  `json:"link,omitempty"`
		Packet  string  `json:"packet,omitempty"`
		Percent *int    `json:"percent,omitempty"`
		Level   *int    `json:"level,omitempty"`
	}{Tick: e.tick, Type: e.subtype}
	switch s := e.source.(type) {
	case NodeSource:
		view.Node = s.NodeID
	case LinkSource:
		view.Link = s.LinkID
	}
	switch p := e.payload.(type) {
	case PacketPayload:
		view.Packet = string(p.Kind)
	case TransitPayload:
		view.Packet = string(p.Kind)
		pct := p.Percent
		view.Percent = &pct
	case CongestionPayload:
		lvl := p.Level
		view.Level = &lvl
	}
	return json.Marshal(view)
}
