package core

// NodeView is the read-only state of one node as the renderer sees it.
type NodeView struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Kind                 NodeKind `json:"kind"`
	Position             Point    `json:"position"`
	Selected             bool     `json:"selected"`
	CongestionLevel      int      `json:"congestionLevel"`
	TicksWithoutEmitting int64    `json:"ticksWithoutEmitting"`
	ShowName             bool     `json:"showName"`
}

// LinkView is the read-only state of one link.
type LinkView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     LinkKind `json:"kind"`
	HeadID   string   `json:"headID"`
	TailID   string   `json:"tailID"`
	Head     Point    `json:"head"`
	Tail     Point    `json:"tail"`
	Delay    int64    `json:"delay"`
	Broken   bool     `json:"broken"`
	Primary  bool     `json:"primary"`
	Backup   bool     `json:"backup"`
	ShowName bool     `json:"showName"`
}

// TopologySnapshot is a consistent copy of all nodes and links.
type TopologySnapshot struct {
	Nodes []NodeView `json:"nodes"`
	Links []LinkView `json:"links"`
}

// Topology is the adapter the renderer reads from. Implementations must return
// copies; the renderer never mutates what it receives.
type Topology interface {
	Snapshot() TopologySnapshot
}

// TopologyFunc adapts a function into a Topology.
type TopologyFunc func() TopologySnapshot

// Snapshot calls the underlying function.
func (f TopologyFunc) Snapshot() TopologySnapshot {
	if f == nil {
		return TopologySnapshot{}
	}
	return f()
}
