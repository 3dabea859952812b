package tile

import (
	"sort"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
)

// Partition splits the located nodes of g into tiles of the given zoom (or the tiles of idx).
// A tile holds its own nodes with all their outgoing edges. Edges which cross the tile border
// are repeated in the tile on the other side, together with the location of the foreign node,
// so both searching directions can continue into the neighboring tile.
func Partition(g *graph.NetworkGraph, zoom int, idx *Index) map[Reference][]graph.Node {
	refOf := func(n graph.Node) Reference {
		if ref, ok := idx.Lookup(n.Coordinates, zoom); ok {
			return ref
		}
		return At(n.Coordinates, zoom)
	}

	type tileContent struct {
		nodes map[string]*graph.Node
		order []string
	}
	tiles := make(map[Reference]*tileContent)
	add := func(ref Reference, n graph.Node) *graph.Node {
		t, ok := tiles[ref]
		if !ok {
			t = &tileContent{nodes: make(map[string]*graph.Node)}
			tiles[ref] = t
		}
		if existing, ok := t.nodes[n.ID]; ok {
			return existing
		}
		t.nodes[n.ID] = &n
		t.order = append(t.order, n.ID)
		return &n
	}
	// location of a node in a foreign tile, without attributes or edges
	stub := func(n graph.Node) graph.Node {
		return graph.Node{ID: n.ID, Coordinates: n.Coordinates, HasCoordinates: true}
	}

	for _, id := range g.NodeIDs() {
		n, _ := g.Get(id)
		if !n.HasCoordinates {
			continue
		}
		ref := refOf(n)
		add(ref, n.Stripped()).NextNodes = n.NextNodes
		for _, nextID := range n.NextNodes {
			next, _ := g.Get(nextID)
			if !next.HasCoordinates {
				continue
			}
			if nextRef := refOf(next); nextRef != ref {
				add(ref, stub(next))
				source := add(nextRef, stub(n))
				source.NextNodes = append(source.NextNodes, next.ID)
			}
		}
	}

	result := make(map[Reference][]graph.Node, len(tiles))
	for ref, t := range tiles {
		nodes := make([]graph.Node, len(t.order))
		for i, id := range t.order {
			nodes[i] = *t.nodes[id]
		}
		result[ref] = nodes
	}
	return result
}

// References returns the references of a partition in lexical order
func References(tiles map[Reference][]graph.Node) []Reference {
	refs := make([]Reference, 0, len(tiles))
	for ref := range tiles {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}
