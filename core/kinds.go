package core

import "strings"

// IconKey identifies one drawable in an icon set. Kinds build their own keys so
// that renderers never branch on kind codes.
type IconKey struct {
	Group   string
	Name    string
	Variant string
}

// String renders the key as group_name[_variant], which is also the file stem
// used by icon theme directories.
func (k IconKey) String() string {
	parts := []string{k.Group, k.Name}
	if k.Variant != "" {
		parts = append(parts, k.Variant)
	}
	return strings.Join(parts, "_")
}

// Icon groups.
const (
	IconGroupNode       = "node"
	IconGroupCongestion = "congestion"
	IconGroupStatus     = "status"
	IconGroupPacket     = "packet"
	IconGroupEvent      = "event"
)

// StalledIconKey is overlaid on nodes that stopped emitting traffic.
var StalledIconKey = IconKey{Group: IconGroupStatus, Name: "stalled"}

// NodeKind represents the role of a node in the MPLS topology.
type NodeKind string

const (
	NodeTrafficGenerator NodeKind = "traffic_generator"
	NodeTrafficSink      NodeKind = "traffic_sink"
	NodeLER              NodeKind = "ler"        // Label Edge Router
	NodeActiveLER        NodeKind = "active_ler" // LER with GoS support
	NodeLSR              NodeKind = "lsr"        // Label Switching Router
	NodeActiveLSR        NodeKind = "active_lsr" // LSR with GoS support
)

type nodeKindInfo struct {
	caption string
	border  bool
}

var nodeKinds = map[NodeKind]nodeKindInfo{
	NodeTrafficGenerator: {caption: "Traffic generator"},
	NodeTrafficSink:      {caption: "Traffic sink"},
	NodeLER:              {caption: "LER", border: true},
	NodeActiveLER:        {caption: "Active LER", border: true},
	NodeLSR:              {caption: "LSR"},
	NodeActiveLSR:        {caption: "Active LSR"},
}

// AllNodeKinds lists node kinds in a stable order.
func AllNodeKinds() []NodeKind {
	return []NodeKind{NodeTrafficGenerator, NodeTrafficSink, NodeLER, NodeActiveLER, NodeLSR, NodeActiveLSR}
}

// Valid reports whether k is a known node kind.
func (k NodeKind) Valid() bool {
	_, ok := nodeKinds[k]
	return ok
}

// IsBorder reports whether nodes of this kind delimit the MPLS domain.
func (k NodeKind) IsBorder() bool {
	return nodeKinds[k].border
}

// Caption returns a human readable name.
func (k NodeKind) Caption() string {
	if info, ok := nodeKinds[k]; ok {
		return info.caption
	}
	return string(k)
}

// IconKey returns the node glyph for the given selection state.
func (k NodeKind) IconKey(selected bool) IconKey {
	variant := "normal"
	if selected {
		variant = "selected"
	}
	return IconKey{Group: IconGroupNode, Name: string(k), Variant: variant}
}

// CongestionIconKey returns the overlay glyph for a congestion band.
func (k NodeKind) CongestionIconKey(band CongestionBand) IconKey {
	return IconKey{Group: IconGroupCongestion, Name: string(k), Variant: band.String()}
}

// CongestionBand is a coarse congestion range used to pick overlays.
type CongestionBand int

const (
	BandNone CongestionBand = iota
	BandLow
	BandMid
	BandHigh
)

// Lower bounds (inclusive, percent) of each congestion band.
const (
	CongestionLowThreshold  = 50
	CongestionMidThreshold  = 75
	CongestionHighThreshold = 95
)

// BandFor maps a congestion percentage to its band.
func BandFor(level int) CongestionBand {
	switch {
	case level >= CongestionHighThreshold:
		return BandHigh
	case level >= CongestionMidThreshold:
		return BandMid
	case level >= CongestionLowThreshold:
		return BandLow
	default:
		return BandNone
	}
}

func (b CongestionBand) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMid:
		return "mid"
	case BandHigh:
		return "high"
	default:
		return "none"
	}
}

// LinkKind separates links inside the MPLS domain from links that leave it.
type LinkKind string

const (
	LinkInternal LinkKind = "internal"
	LinkExternal LinkKind = "external"
)

// Valid reports whether k is a known link kind.
func (k LinkKind) Valid() bool {
	return k == LinkInternal || k == LinkExternal
}

// PacketKind enumerates the packet families a marker can represent.
type PacketKind string

const (
	PacketIPv4    PacketKind = "ipv4"
	PacketIPv4GoS PacketKind = "ipv4_gos"
	PacketMPLS    PacketKind = "mpls"
	PacketMPLSGoS PacketKind = "mpls_gos"
	PacketTLDP    PacketKind = "tldp"
	PacketGPSRP   PacketKind = "gpsrp"
	PacketRLPRP   PacketKind = "rlprp"
)

var packetCaptions = map[PacketKind]string{
	PacketIPv4:    "IPv4 packet",
	PacketIPv4GoS: "IPv4 packet with GoS",
	PacketMPLS:    "MPLS packet",
	PacketMPLSGoS: "MPLS packet with GoS",
	PacketTLDP:    "TLDP packet",
	PacketGPSRP:   "GPSRP packet",
	PacketRLPRP:   "RLPRP packet",
}

// AllPacketKinds lists packet kinds in legend order.
func AllPacketKinds() []PacketKind {
	return []PacketKind{PacketIPv4, PacketIPv4GoS, PacketMPLS, PacketMPLSGoS, PacketTLDP, PacketGPSRP, PacketRLPRP}
}

// Valid reports whether k is a known packet kind.
func (k PacketKind) Valid() bool {
	_, ok := packetCaptions[k]
	return ok
}

// Caption returns the legend caption.
func (k PacketKind) Caption() string {
	if c, ok := packetCaptions[k]; ok {
		return c
	}
	return string(k)
}

// IconKey is the glyph of a packet travelling over a link.
func (k PacketKind) IconKey() IconKey {
	return IconKey{Group: IconGroupPacket, Name: string(k)}
}
