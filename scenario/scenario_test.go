package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/netsim_playback/core"
)

const sampleYAML = `
name: sample
nodes:
  - {id: A, kind: ler, x: 10, y: 10, show_name: true, name: Ingress}
  - {id: B, kind: lsr, x: 110, y: 10}
links:
  - {id: AB, head: A, tail: B, delay: 10}
events:
  - {tick: 5, type: PacketOnFly, link: AB, packet: mpls, percent: 50}
  - {tick: 0, type: PacketGenerated, node: A, packet: ipv4}
  - {tick: 0, type: PacketSent, node: A, packet: ipv4}
  - {tick: 7, type: LspEstablished, node: A, path: [AB]}
`

func TestParseAndBuild(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sc, err := Build(doc)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(sc.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(sc.Steps))
	}
	want := []core.Subtype{core.PacketGenerated, core.PacketSent, core.PacketOnFly, core.LspEstablished}
	for i, step := range sc.Steps {
		if step.Event.Subtype() != want[i] {
			t.Fatalf("step %d: expected %s, got %s", i, want[i], step.Event.Subtype())
		}
	}
	transit, ok := sc.Steps[2].Event.Payload().(core.TransitPayload)
	if !ok || transit.Percent != 50 || transit.Kind != core.PacketMPLS {
		t.Fatalf("unexpected transit payload %#v", sc.Steps[2].Event.Payload())
	}
	if src, ok := sc.Steps[2].Event.Source().(core.LinkSource); !ok || src.Tail != core.Pt(110, 10) {
		t.Fatalf("link source not resolved: %#v", sc.Steps[2].Event.Source())
	}
	if len(sc.Steps[3].Path) != 1 || sc.Steps[3].Path[0] != "AB" {
		t.Fatalf("lsp path lost: %+v", sc.Steps[3])
	}
	snap := sc.Topology.Snapshot()
	if !snap.Nodes[0].ShowName || snap.Nodes[0].Name != "Ingress" {
		t.Fatalf("node flags lost: %+v", snap.Nodes[0])
	}
}

func TestBuildRejectsBadEvents(t *testing.T) {
	cases := []struct {
		name  string
		event EventSpec
		want  error
	}{
		{"unknown node", EventSpec{Type: core.PacketSent, Node: "Z", Packet: core.PacketIPv4}, ErrUnknownNode},
		{"unknown link", EventSpec{Type: core.LinkBroken, Link: "ZZ"}, ErrUnknownLink},
		{"bad subtype", EventSpec{Type: "Teleported", Node: "A"}, core.ErrUnknownSubtype},
		{"bad packet", EventSpec{Type: core.PacketSent, Node: "A", Packet: "carrier_pigeon"}, ErrInvalidEvent},
		{"percent range", EventSpec{Type: core.PacketOnFly, Link: "AB", Packet: core.PacketIPv4, Percent: 130}, ErrInvalidEvent},
		{"bad path", EventSpec{Type: core.LspEstablished, Node: "A", Path: []string{"nope"}}, ErrUnknownLink},
	}
	for _, tc := range cases {
		doc, err := Parse([]byte(sampleYAML))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		doc.Events = []EventSpec{tc.event}
		if _, err := Build(doc); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestBuiltinScenariosBuild(t *testing.T) {
	for _, p := range GetPredefinedScenarios() {
		sc, err := Build(p.Document())
		if err != nil {
			t.Fatalf("%s: %v", p.Name, err)
		}
		if len(sc.Steps) == 0 {
			t.Fatalf("%s: empty trace", p.Name)
		}
		for i := 1; i < len(sc.Steps); i++ {
			if sc.Steps[i].Event.Tick() < sc.Steps[i-1].Event.Tick() {
				t.Fatalf("%s: trace not sorted at %d", p.Name, i)
			}
		}
	}
	if _, err := Builtin("missing"); !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected unknown scenario error, got %v", err)
	}
}

func TestLoadRoundTripsThroughFile(t *testing.T) {
	doc, err := Builtin("link_failure")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Name != "link_failure" || len(loaded.Events) != len(doc.Events) || len(loaded.Links) != 4 {
		t.Fatalf("loaded document differs: %s events=%d links=%d", loaded.Name, len(loaded.Events), len(loaded.Links))
	}
}
