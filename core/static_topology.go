package core

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrDuplicateLink = errors.New("duplicate link id")
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownLink   = errors.New("unknown link")
)

type staticNode struct {
	view     NodeView
	initial  NodeView
	lastEmit int64
	emitted  bool
}

type staticLink struct {
	view    LinkView
	initial LinkView
}

// StaticTopology is an in-memory Topology whose dynamic state (congestion,
// broken links, reserved paths, emission times) is updated by the simulation
// side while renderers read snapshots concurrently.
type StaticTopology struct {
	mu        sync.RWMutex
	nodes     []*staticNode
	nodeIndex map[string]*staticNode
	links     []*staticLink
	linkIndex map[string]*staticLink
	now       int64
}

// NewStaticTopology creates an empty topology.
func NewStaticTopology() *StaticTopology {
	return &StaticTopology{
		nodeIndex: make(map[string]*staticNode),
		linkIndex: make(map[string]*staticLink),
	}
}

// AddNode registers a node. The view's dynamic fields are taken as initial state.
func (t *StaticTopology) AddNode(view NodeView) error {
	if t == nil {
		return errors.New("topology is nil")
	}
	if view.ID == "" {
		return errors.New("node id cannot be empty")
	}
	if !view.Kind.Valid() {
		return fmt.Errorf("node %s: unknown kind %q", view.ID, view.Kind)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.nodeIndex[view.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, view.ID)
	}
	node := &staticNode{view: view, initial: view}
	t.nodes = append(t.nodes, node)
	t.nodeIndex[view.ID] = node
	return nil
}

// AddLink registers a link between two known nodes. Head and Tail positions
// are filled in from the endpoints.
func (t *StaticTopology) AddLink(view LinkView) error {
	if t == nil {
		return errors.New("topology is nil")
	}
	if view.ID == "" {
		return errors.New("link id cannot be empty")
	}
	if view.Kind == "" {
		view.Kind = LinkInternal
	}
	if !view.Kind.Valid() {
		return fmt.Errorf("link %s: unknown kind %q", view.ID, view.Kind)
	}
	if view.Delay < 0 {
		return fmt.Errorf("link %s: delay must be non-negative, got %d", view.ID, view.Delay)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.linkIndex[view.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLink, view.ID)
	}
	head, ok := t.nodeIndex[view.HeadID]
	if !ok {
		return fmt.Errorf("link %s head: %w: %s", view.ID, ErrUnknownNode, view.HeadID)
	}
	tail, ok := t.nodeIndex[view.TailID]
	if !ok {
		return fmt.Errorf("link %s tail: %w: %s", view.ID, ErrUnknownNode, view.TailID)
	}
	view.Head = head.view.Position
	view.Tail = tail.view.Position
	link := &staticLink{view: view, initial: view}
	t.links = append(t.links, link)
	t.linkIndex[view.ID] = link
	return nil
}

// Snapshot implements Topology.
func (t *StaticTopology) Snapshot() TopologySnapshot {
	if t == nil {
		return TopologySnapshot{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := TopologySnapshot{
		Nodes: make([]NodeView, 0, len(t.nodes)),
		Links: make([]LinkView, 0, len(t.links)),
	}
	for _, n := range t.nodes {
		view := n.view
		if n.view.Kind == NodeTrafficGenerator {
			since := int64(0)
			if n.emitted {
				since = n.lastEmit
			}
			if t.now > since {
				view.TicksWithoutEmitting = t.now - since
			}
		}
		snap.Nodes = append(snap.Nodes, view)
	}
	for _, l := range t.links {
		snap.Links = append(snap.Links, l.view)
	}
	return snap
}

// NodeSource returns an event source for the node at its current position.
func (t *StaticTopology) NodeSource(id string) (NodeSource, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodeIndex[id]
	if !ok {
		return NodeSource{}, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return NodeSource{NodeID: id, At: n.view.Position}, nil
}

// LinkSource returns an event source for the link at its current endpoints.
func (t *StaticTopology) LinkSource(id string) (LinkSource, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, ok := t.linkIndex[id]
	if !ok {
		return LinkSource{}, fmt.Errorf("%w: %s", ErrUnknownLink, id)
	}
	return LinkSource{LinkID: id, Head: l.view.Head, Tail: l.view.Tail}, nil
}

// Advance moves the topology clock used to compute ticks without emitting.
func (t *StaticTopology) Advance(tick int64) {
	t.mu.Lock()
	if tick > t.now {
		t.now = tick
	}
	t.mu.Unlock()
}

// NoteEmission records that a node emitted traffic at tick.
func (t *StaticTopology) NoteEmission(nodeID string, tick int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.nodeIndex[nodeID]; ok {
		n.lastEmit = tick
		n.emitted = true
	}
}

// SetCongestion updates a node congestion level, clamped to 0..100.
func (t *StaticTopology) SetCongestion(nodeID string, level int) error {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodeIndex[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	n.view.CongestionLevel = level
	return nil
}

// SetSelected toggles the selection flag of a node.
func (t *StaticTopology) SetSelected(nodeID string, selected bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodeIndex[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	n.view.Selected = selected
	return nil
}

// SetBroken marks a link as broken or recovered.
func (t *StaticTopology) SetBroken(linkID string, broken bool) error {
	return t.updateLink(linkID, func(l *LinkView) { l.Broken = broken })
}

// SetPrimary marks whether a link carries a primary reserved path.
func (t *StaticTopology) SetPrimary(linkID string, primary bool) error {
	return t.updateLink(linkID, func(l *LinkView) { l.Primary = primary })
}

// SetBackup marks whether a link carries a backup reserved path.
func (t *StaticTopology) SetBackup(linkID string, backup bool) error {
	return t.updateLink(linkID, func(l *LinkView) { l.Backup = backup })
}

// ResetState restores every node and link to the state it was added with and
// clears the emission history.
func (t *StaticTopology) ResetState() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range t.nodes {
		n.view = n.initial
		n.lastEmit = 0
		n.emitted = false
	}
	for _, l := range t.links {
		l.view = l.initial
	}
	t.now = 0
}

func (t *StaticTopology) updateLink(linkID string, fn func(*LinkView)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.linkIndex[linkID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLink, linkID)
	}
	fn(&l.view)
	return nil
}
