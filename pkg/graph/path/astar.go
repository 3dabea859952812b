package path

import (
	"context"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/queue"
	"github.com/paulmach/orb"
)

// AStar is the unidirectional search. With the zero heuristic it is Dijkstra's algorithm.
// Implements the PathFinder interface.
type AStar struct {
	finder
}

func NewAStar(opts ...Option) *AStar {
	a := &AStar{}
	a.init(opts)
	return a
}

func (a *AStar) FindPath(ctx context.Context, from Endpoint, to *Endpoint, targetRank int) (*Result, error) {
	a.reset()
	a.logger.Debug("new search", "from", from.ID, "to", to, "targetRank", targetRank)

	if err := a.fetchEndpoints(ctx, from, to); err != nil {
		a.finish()
		return nil, err
	}

	origin, ok := a.graph.Get(from.ID)
	if !ok {
		// the origin is not connected to the rest of the graph
		a.logger.Info("origin not in graph", "from", from.ID)
		a.finish()
		return nil, nil
	}

	target := ""
	var targetPoint orb.Point
	if to != nil {
		target = to.ID
		targetPoint = to.Coordinates
		if n, ok := a.graph.Get(to.ID); ok && n.HasCoordinates {
			targetPoint = n.Coordinates
		}
	}
	heuristic := func(n graph.Node) float64 {
		if to == nil || !n.HasCoordinates {
			return 0
		}
		return a.heuristic(n.Coordinates, targetPoint)
	}

	pool := newPool[*searchItem]()
	minHeap := queue.NewMinHeap(
		func(x, y *searchItem) bool { return x.fScore < y.fScore },
		func(item *searchItem, i int) { item.index = i },
	)

	originItem := &searchItem{id: origin.ID, fScore: heuristic(origin), previous: -1, index: -1}
	originItem.pos = pool.add(origin.ID, originItem)
	minHeap.Push(originItem)

	for minHeap.Len() > 0 {
		if a.stopped(ctx) {
			a.finish()
			return nil, nil
		}

		a.metadata.DijkstraRank++
		current := minHeap.Pop()
		a.logger.Debug("settling node", "id", current.id, "gScore", current.gScore, "fScore", current.fScore, "rank", a.metadata.DijkstraRank)

		if (to != nil && current.id == target) || (targetRank > 0 && a.metadata.DijkstraRank >= targetRank) {
			positions := pool.reversed(current.pos, func(item *searchItem) int { return item.previous })
			result := a.result(pool.idsOf(positions, func(item *searchItem) string { return item.id }))
			a.logger.Info("found path", "from", from.ID, "to", current.id, "metadata", result.Metadata.String())
			return result, nil
		}

		// a node without outgoing edges is a dead end
		node := a.node(current.id)
		for _, neighborID := range node.NextNodes {
			neighbor, err := a.loadNeighbor(ctx, neighborID)
			if err != nil {
				a.finish()
				return nil, err
			}

			tentative := current.gScore + a.cost(node, neighbor)
			item, seen := pool.get(neighborID)
			if seen && tentative >= item.gScore {
				continue
			}
			if !seen {
				item = &searchItem{id: neighborID, index: -1}
				item.pos = pool.add(neighborID, item)
			}
			item.gScore = tentative
			item.fScore = tentative + heuristic(neighbor)
			item.previous = current.pos
			a.logger.Debug("relaxed edge", "from", current.id, "to", neighborID, "gScore", item.gScore, "fScore", item.fScore)

			if item.index < 0 {
				minHeap.Push(item)
			} else {
				minHeap.Update(item.index)
			}
		}
	}

	a.logger.Info("no path found", "from", from.ID, "rank", a.metadata.DijkstraRank)
	a.finish()
	return nil, nil
}
