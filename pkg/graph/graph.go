package graph

import (
	"sort"
	"sync"

	"github.com/paulmach/orb"
)

// Node is a read-only snapshot of a vertex of the network graph.
type Node struct {
	ID             string
	Coordinates    orb.Point // (longitude, latitude), valid if HasCoordinates
	HasCoordinates bool
	Cost           float64 // intrinsic weight, valid if HasCost
	HasCost        bool
	NextNodes      []string // targets of outgoing edges
	PrevNodes      []string // sources of incoming edges
}

// Stripped returns the node without its adjacency, as it is reported on a path.
func (n Node) Stripped() Node {
	n.NextNodes = nil
	n.PrevNodes = nil
	return n
}

// NodePatch is a partial node description. Only the set fields are merged into the graph.
type NodePatch struct {
	ID                string
	Coordinates       *orb.Point
	Longitude         *float64
	Latitude          *float64
	Cost              *float64
	NextNode          string // forward edge ID -> NextNode
	PrevNode          string // forward edge PrevNode -> ID
	BidirectionalNode string // edges in both directions
}

// Coords is a helper to fill NodePatch.Coordinates
func Coords(lon, lat float64) *orb.Point {
	p := orb.Point{lon, lat}
	return &p
}

// Float is a helper to fill the numeric fields of a NodePatch
func Float(v float64) *float64 {
	return &v
}

type node struct {
	id        string
	lon, lat  float64
	hasLon    bool
	hasLat    bool
	cost      float64
	hasCost   bool
	nextNodes *idSet
	prevNodes *idSet
}

func (n *node) snapshot() Node {
	return Node{
		ID:             n.id,
		Coordinates:    orb.Point{n.lon, n.lat},
		HasCoordinates: n.hasLon && n.hasLat,
		Cost:           n.cost,
		HasCost:        n.hasCost,
		NextNodes:      n.nextNodes.Slice(),
		PrevNodes:      n.prevNodes.Slice(),
	}
}

// NetworkGraph is an append/merge-only directed graph keyed by node id.
// Every forward edge is mirrored by a backward edge on its target.
// It is safe for concurrent use, so several queries can share (and warm) the same instance.
type NetworkGraph struct {
	mu        sync.RWMutex
	nodes     map[string]*node
	edgeCount int
}

func NewNetworkGraph() *NetworkGraph {
	return &NetworkGraph{nodes: make(map[string]*node)}
}

// Get returns a snapshot of the node with the given id
func (g *NetworkGraph) Get(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.snapshot(), true
}

func (g *NetworkGraph) Has(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// SetNode merges the patch into the graph, creating the referenced nodes if needed.
// Applying the same patch more than once has no further effect.
func (g *NetworkGraph) SetNode(patch NodePatch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setNode(patch)
}

// SetNodes merges all patches under a single lock
func (g *NetworkGraph) SetNodes(patches []NodePatch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, patch := range patches {
		g.setNode(patch)
	}
}

func (g *NetworkGraph) setNode(patch NodePatch) {
	n := g.getOrCreate(patch.ID)

	if patch.Coordinates != nil {
		n.lon, n.lat = patch.Coordinates.Lon(), patch.Coordinates.Lat()
		n.hasLon, n.hasLat = true, true
	}
	if patch.Longitude != nil {
		n.lon, n.hasLon = *patch.Longitude, true
	}
	if patch.Latitude != nil {
		n.lat, n.hasLat = *patch.Latitude, true
	}
	if patch.Cost != nil {
		n.cost, n.hasCost = *patch.Cost, true
	}
	if patch.NextNode != "" {
		if n.nextNodes.Add(patch.NextNode) {
			g.edgeCount++
		}
		g.getOrCreate(patch.NextNode).prevNodes.Add(patch.ID)
	}
	if patch.PrevNode != "" {
		g.setNode(NodePatch{ID: patch.PrevNode, NextNode: patch.ID})
	}
	if patch.BidirectionalNode != "" {
		g.setNode(NodePatch{ID: patch.ID, NextNode: patch.BidirectionalNode})
		g.setNode(NodePatch{ID: patch.BidirectionalNode, NextNode: patch.ID})
	}
}

func (g *NetworkGraph) getOrCreate(id string) *node {
	n, ok := g.nodes[id]
	if !ok {
		n = &node{id: id, nextNodes: newIDSet(), prevNodes: newIDSet()}
		g.nodes[id] = n
	}
	return n
}

// Return the number of nodes
func (g *NetworkGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Return the number of (forward) edges
func (g *NetworkGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgeCount
}

// NodeIDs returns all node ids in lexical order
func (g *NetworkGraph) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextNodes returns the targets of the outgoing edges of id
func (g *NetworkGraph) NextNodes(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[id]; ok {
		return n.nextNodes.Slice()
	}
	return nil
}

// PrevNodes returns the sources of the incoming edges of id
func (g *NetworkGraph) PrevNodes(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[id]; ok {
		return n.prevNodes.Slice()
	}
	return nil
}
