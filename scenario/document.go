package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/example/netsim_playback/core"
	"github.com/example/netsim_playback/simulator"
)

var (
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnknownNode     = core.ErrUnknownNode
	ErrUnknownLink     = core.ErrUnknownLink
	ErrInvalidEvent    = errors.New("invalid trace event")
)

// Document is a scenario file: a topology plus the event trace replayed on it.
type Document struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Nodes       []NodeSpec  `yaml:"nodes" json:"nodes"`
	Links       []LinkSpec  `yaml:"links" json:"links"`
	Events      []EventSpec `yaml:"events" json:"events"`
}

// NodeSpec describes one node on the canvas.
type NodeSpec struct {
	ID       string        `yaml:"id" json:"id"`
	Name     string        `yaml:"name,omitempty" json:"name,omitempty"`
	Kind     core.NodeKind `yaml:"kind" json:"kind"`
	X        float64       `yaml:"x" json:"x"`
	Y        float64       `yaml:"y" json:"y"`
	ShowName bool          `yaml:"show_name,omitempty" json:"show_name,omitempty"`
	Selected bool          `yaml:"selected,omitempty" json:"selected,omitempty"`
}

// LinkSpec describes one link between two nodes.
type LinkSpec struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Head     string `yaml:"head" json:"head"`
	Tail     string `yaml:"tail" json:"tail"`
	Delay    int64  `yaml:"delay" json:"delay"`
	External bool   `yaml:"external,omitempty" json:"external,omitempty"`
	ShowName bool   `yaml:"show_name,omitempty" json:"show_name,omitempty"`
	Primary  bool   `yaml:"primary,omitempty" json:"primary,omitempty"`
	Backup   bool   `yaml:"backup,omitempty" json:"backup,omitempty"`
}

// EventSpec is the flat form of one trace event. Node or Link names the source
// depending on the event type.
type EventSpec struct {
	Tick    int64           `yaml:"tick" json:"tick"`
	Type    core.Subtype    `yaml:"type" json:"type"`
	Node    string          `yaml:"node,omitempty" json:"node,omitempty"`
	Link    string          `yaml:"link,omitempty" json:"link,omitempty"`
	Packet  core.PacketKind `yaml:"packet,omitempty" json:"packet,omitempty"`
	Percent int             `yaml:"percent,omitempty" json:"percent,omitempty"`
	Level   int             `yaml:"level,omitempty" json:"level,omitempty"`
	// Path lists the links an LspEstablished event reserves.
	Path   []string `yaml:"path,omitempty" json:"path,omitempty"`
	Backup bool     `yaml:"backup,omitempty" json:"backup,omitempty"`
}

// Scenario is a built document ready for playback.
type Scenario struct {
	Name     string
	Topology *core.StaticTopology
	Steps    []simulator.TraceStep
}

// Parse decodes a YAML scenario document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return &doc, nil
}

// Load reads and decodes a scenario file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes a document as YAML.
func Marshal(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

// Build resolves the document into a topology and a validated trace. Trace
// events are sorted stably by tick so producers always see non-decreasing
// ticks.
func Build(doc *Document) (*Scenario, error) {
	if doc == nil {
		return nil, errors.New("scenario document is nil")
	}
	topo := core.NewStaticTopology()
	for _, n := range doc.Nodes {
		if err := topo.AddNode(core.NodeView{
			ID:       n.ID,
			Name:     n.Name,
			Kind:     n.Kind,
			Position: core.Pt(n.X, n.Y),
			Selected: n.Selected,
			ShowName: n.ShowName,
		}); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", doc.Name, err)
		}
	}
	for _, l := range doc.Links {
		kind := core.LinkInternal
		if l.External {
			kind = core.LinkExternal
		}
		if err := topo.AddLink(core.LinkView{
			ID:       l.ID,
			Name:     l.Name,
			Kind:     kind,
			HeadID:   l.Head,
			TailID:   l.Tail,
			Delay:    l.Delay,
			Primary:  l.Primary,
			Backup:   l.Backup,
			ShowName: l.ShowName,
		}); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", doc.Name, err)
		}
	}

	steps := make([]simulator.TraceStep, 0, len(doc.Events))
	for i, spec := range doc.Events {
		step, err := buildStep(topo, spec)
		if err != nil {
			return nil, fmt.Errorf("scenario %s event %d: %w", doc.Name, i, err)
		}
		steps = append(steps, step)
	}
	sortSteps(steps)
	return &Scenario{Name: doc.Name, Topology: topo, Steps: steps}, nil
}

func buildStep(topo *core.StaticTopology, spec EventSpec) (simulator.TraceStep, error) {
	if spec.Tick < 0 {
		return simulator.TraceStep{}, fmt.Errorf("%w: negative tick %d", ErrInvalidEvent, spec.Tick)
	}
	if !spec.Type.Valid() {
		return simulator.TraceStep{}, fmt.Errorf("%w: %w: %q", ErrInvalidEvent, core.ErrUnknownSubtype, spec.Type)
	}
	var source core.Source
	if spec.Type.OnLink() {
		src, err := topo.LinkSource(spec.Link)
		if err != nil {
			return simulator.TraceStep{}, err
		}
		source = src
	} else {
		src, err := topo.NodeSource(spec.Node)
		if err != nil {
			return simulator.TraceStep{}, err
		}
		source = src
	}
	ev := core.NewEvent(spec.Tick, spec.Type, source, spec.Type.BuildPayload(spec.Packet, spec.Percent, spec.Level))
	if err := ev.Validate(); err != nil {
		return simulator.TraceStep{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	for _, linkID := range spec.Path {
		if _, err := topo.LinkSource(linkID); err != nil {
			return simulator.TraceStep{}, fmt.Errorf("lsp path: %w", err)
		}
	}
	return simulator.TraceStep{Event: ev, Path: spec.Path, Backup: spec.Backup}, nil
}

func sortSteps(steps []simulator.TraceStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Event.Tick() < steps[j].Event.Tick()
	})
}
