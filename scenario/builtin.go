package scenario

import (
	"fmt"
	"sort"

	"github.com/example/netsim_playback/core"
)

// Predefined pairs a built-in scenario name with a description and builder.
type Predefined struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	build       func() *Document
}

// Document builds a fresh copy of the predefined document.
func (p Predefined) Document() *Document {
	doc := p.build()
	doc.Description = p.Description
	return doc
}

var predefined = map[string]Predefined{
	"two_domains": {
		Name:        "two_domains",
		Description: "Two MPLS domains joined by an inter-domain link: LSP setup, transit traffic, congestion on the core LSR, a link failure with backup path and recovery",
		build:       twoDomains,
	},
	"link_failure": {
		Name:        "link_failure",
		Description: "Single domain triangle: primary LSP breaks, traffic is discarded then rerouted over the backup path",
		build:       linkFailure,
	},
}

// GetPredefinedScenarios returns all built-in scenarios sorted by name.
func GetPredefinedScenarios() []Predefined {
	out := make([]Predefined, 0, len(predefined))
	for _, p := range predefined {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Builtin returns a fresh copy of the named built-in scenario document.
func Builtin(name string) (*Document, error) {
	p, ok := predefined[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return p.Document(), nil
}

// hop is one link traversal of a packet flow: the packet leaves From over Link
// and arrives at To Delay ticks later.
type hop struct {
	From, Link, To string
	Delay          int64
	// Arrive is the event recorded at To.
	Arrive core.Subtype
}

// flow appends the events of one packet following hops, starting at tick.
func flow(events []EventSpec, tick int64, kind core.PacketKind, hops []hop) []EventSpec {
	if len(hops) == 0 {
		return events
	}
	events = append(events, EventSpec{Tick: tick, Type: core.PacketGenerated, Node: hops[0].From, Packet: kind})
	for _, h := range hops {
		events = append(events, EventSpec{Tick: tick, Type: core.PacketSent, Node: h.From, Packet: kind})
		for step := int64(1); step < h.Delay; step++ {
			events = append(events, EventSpec{
				Tick:    tick + step,
				Type:    core.PacketOnFly,
				Link:    h.Link,
				Packet:  kind,
				Percent: int(step * 100 / h.Delay),
			})
		}
		tick += h.Delay
		arrive := h.Arrive
		if arrive == "" {
			arrive = core.PacketReceived
		}
		events = append(events, EventSpec{Tick: tick, Type: arrive, Node: h.To, Packet: kind})
	}
	return events
}

func twoDomains() *Document {
	doc := &Document{
		Name:  "two_domains",
		Nodes: []NodeSpec{
			{ID: "G1", Name: "Source", Kind: core.NodeTrafficGenerator, X: 60, Y: 220, ShowName: true},
			{ID: "E1", Name: "LER-A1", Kind: core.NodeLER, X: 180, Y: 220, ShowName: true},
			{ID: "R1", Name: "LSR-A", Kind: core.NodeLSR, X: 300, Y: 140},
			{ID: "R3", Name: "LSR-A'", Kind: core.NodeLSR, X: 300, Y: 320},
			{ID: "E2", Name: "LER-A2", Kind: core.NodeLER, X: 420, Y: 240, ShowName: true},
			{ID: "E3", Name: "LER-B1", Kind: core.NodeActiveLER, X: 560, Y: 200, ShowName: true},
			{ID: "R2", Name: "LSR-B", Kind: core.NodeActiveLSR, X: 680, Y: 160},
			{ID: "E4", Name: "LER-B2", Kind: core.NodeActiveLER, X: 800, Y: 220, ShowName: true},
			{ID: "S1", Name: "Sink", Kind: core.NodeTrafficSink, X: 920, Y: 220, ShowName: true},
		},
		Links: []LinkSpec{
			{ID: "G1E1", Head: "G1", Tail: "E1", Delay: 4, External: true},
			{ID: "E1R1", Head: "E1", Tail: "R1", Delay: 4},
			{ID: "R1E2", Name: "core", Head: "R1", Tail: "E2", Delay: 4, ShowName: true},
			{ID: "E1R3", Head: "E1", Tail: "R3", Delay: 6},
			{ID: "R3E2", Head: "R3", Tail: "E2", Delay: 6},
			{ID: "E2E3", Name: "peering", Head: "E2", Tail: "E3", Delay: 900, External: true, ShowName: true},
			{ID: "E3R2", Head: "E3", Tail: "R2", Delay: 3},
			{ID: "R2E4", Head: "R2", Tail: "E4", Delay: 3},
			{ID: "E4S1", Head: "E4", Tail: "S1", Delay: 4, External: true},
		},
	}

	events := []EventSpec{
		{Tick: 0, Type: core.PacketGenerated, Node: "E1", Packet: core.PacketTLDP},
		{Tick: 0, Type: core.PacketSent, Node: "E1", Packet: core.PacketTLDP},
		{Tick: 2, Type: core.PacketReceived, Node: "E2", Packet: core.PacketTLDP},
		{Tick: 3, Type: core.LspEstablished, Node: "E1", Path: []string{"E1R1", "R1E2"}},
		{Tick: 4, Type: core.LspEstablished, Node: "E1", Path: []string{"E1R3", "R3E2"}, Backup: true},
		{Tick: 5, Type: core.LspEstablished, Node: "E3", Path: []string{"E3R2", "R2E4"}},
	}

	domainA := []hop{
		{From: "G1", Link: "G1E1", To: "E1", Delay: 4, Arrive: core.PacketRouted},
		{From: "E1", Link: "E1R1", To: "R1", Delay: 4, Arrive: core.PacketSwitched},
		{From: "R1", Link: "R1E2", To: "E2", Delay: 4, Arrive: core.PacketRouted},
	}
	domainB := []hop{
		{From: "E3", Link: "E3R2", To: "R2", Delay: 3, Arrive: core.PacketSwitched},
		{From: "R2", Link: "R2E4", To: "E4", Delay: 3, Arrive: core.PacketRouted},
		{From: "E4", Link: "E4S1", To: "S1", Delay: 4},
	}
	for i := int64(0); i < 6; i++ {
		start := 10 + i*8
		events = flow(events, start, core.PacketMPLS, domainA)
		events = append(events, EventSpec{Tick: start + 12, Type: core.PacketSent, Node: "E2", Packet: core.PacketIPv4})
		events = flow(events, start+14, core.PacketMPLSGoS, domainB)
	}

	for i, level := range []int{35, 55, 78, 96, 82, 60, 20} {
		events = append(events, EventSpec{Tick: int64(20 + i*6), Type: core.NodeCongested, Node: "R1", Level: level})
	}
	events = append(events,
		EventSpec{Tick: 70, Type: core.LinkBroken, Link: "R1E2"},
		EventSpec{Tick: 71, Type: core.PacketDiscarded, Node: "R1", Packet: core.PacketMPLS},
		EventSpec{Tick: 72, Type: core.PacketGenerated, Node: "R1", Packet: core.PacketGPSRP},
		EventSpec{Tick: 72, Type: core.PacketSent, Node: "R1", Packet: core.PacketGPSRP},
	)
	backup := []hop{
		{From: "G1", Link: "G1E1", To: "E1", Delay: 4, Arrive: core.PacketRouted},
		{From: "E1", Link: "E1R3", To: "R3", Delay: 6, Arrive: core.PacketSwitched},
		{From: "R3", Link: "R3E2", To: "E2", Delay: 6, Arrive: core.PacketRouted},
	}
	events = flow(events, 74, core.PacketMPLS, backup)
	events = append(events, EventSpec{Tick: 96, Type: core.LinkRecovered, Link: "R1E2"})
	events = flow(events, 98, core.PacketIPv4GoS, domainA)

	doc.Events = events
	return doc
}

func linkFailure() *Document {
	doc := &Document{
		Name:  "link_failure",
		Nodes: []NodeSpec{
			{ID: "G", Kind: core.NodeTrafficGenerator, X: 60, Y: 160},
			{ID: "A", Name: "Ingress", Kind: core.NodeLER, X: 180, Y: 160, ShowName: true},
			{ID: "B", Kind: core.NodeLSR, X: 320, Y: 60},
			{ID: "C", Name: "Egress", Kind: core.NodeLER, X: 460, Y: 160, ShowName: true, Selected: true},
		},
		Links: []LinkSpec{
			{ID: "GA", Head: "G", Tail: "A", Delay: 2, External: true},
			{ID: "AC", Name: "direct", Head: "A", Tail: "C", Delay: 5, ShowName: true},
			{ID: "AB", Head: "A", Tail: "B", Delay: 3},
			{ID: "BC", Head: "B", Tail: "C", Delay: 3},
		},
	}
	events := []EventSpec{
		{Tick: 0, Type: core.LspEstablished, Node: "A", Path: []string{"AC"}},
		{Tick: 1, Type: core.LspEstablished, Node: "A", Path: []string{"AB", "BC"}, Backup: true},
	}
	primary := []hop{
		{From: "G", Link: "GA", To: "A", Delay: 2, Arrive: core.PacketRouted},
		{From: "A", Link: "AC", To: "C", Delay: 5},
	}
	events = flow(events, 2, core.PacketMPLS, primary)
	events = append(events,
		EventSpec{Tick: 12, Type: core.LinkBroken, Link: "AC"},
		EventSpec{Tick: 13, Type: core.PacketDiscarded, Node: "A", Packet: core.PacketMPLS},
		EventSpec{Tick: 13, Type: core.PacketGenerated, Node: "A", Packet: core.PacketRLPRP},
		EventSpec{Tick: 13, Type: core.PacketSent, Node: "A", Packet: core.PacketRLPRP},
	)
	rerouted := []hop{
		{From: "G", Link: "GA", To: "A", Delay: 2, Arrive: core.PacketRouted},
		{From: "A", Link: "AB", To: "B", Delay: 3, Arrive: core.PacketSwitched},
		{From: "B", Link: "BC", To: "C", Delay: 3},
	}
	events = flow(events, 14, core.PacketMPLS, rerouted)
	events = append(events, EventSpec{Tick: 30, Type: core.LinkRecovered, Link: "AC"})
	doc.Events = events
	return doc
}
