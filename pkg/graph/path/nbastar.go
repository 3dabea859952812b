package path

import (
	"context"
	"math"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/queue"
	"github.com/paulmach/orb"
)

// NBAStar is the bidirectional A* search (new bidirectional A*, Pijls and Post).
// Forward and backward search share one pool and meet at a node reached from both sides.
// Implements the PathFinder interface.
type NBAStar struct {
	finder
}

func NewNBAStar(opts ...Option) *NBAStar {
	n := &NBAStar{}
	n.init(opts)
	return n
}

// nbaSearch holds the state of one query
type nbaSearch struct {
	pool     *pool[*nbaItem]
	forward  *queue.MinHeap[*nbaItem]
	backward *queue.MinHeap[*nbaItem]
	origin   string
	target   string
	source   [2]orb.Point // origin and target location, indexed by direction
	bestF    [2]float64   // lowest fScore on each queue, indexed by direction
	length   float64      // length of the shortest path seen so far (L)
	meeting  int          // pool position of the meeting point of that path (M), -1 if none
}

func dirIndex(d Direction) int {
	if d == FORWARD {
		return 0
	}
	return 1
}

func (n *NBAStar) FindPath(ctx context.Context, from Endpoint, to *Endpoint, targetRank int) (*Result, error) {
	n.reset()
	if to == nil {
		return nil, ErrTargetRequired
	}
	n.logger.Debug("new bidirectional search", "from", from.ID, "to", to.ID, "targetRank", targetRank)

	if err := n.fetchEndpoints(ctx, from, to); err != nil {
		n.finish()
		return nil, err
	}

	origin, okOrigin := n.graph.Get(from.ID)
	target, okTarget := n.graph.Get(to.ID)
	if !okOrigin || !okTarget {
		n.logger.Info("endpoint not in graph", "from", from.ID, "to", to.ID, "originKnown", okOrigin, "targetKnown", okTarget)
		n.finish()
		return nil, nil
	}
	if origin.ID == target.ID {
		n.metadata.DijkstraRank = 1
		return n.result([]string{origin.ID}), nil
	}

	s := &nbaSearch{
		pool:    newPool[*nbaItem](),
		origin:  origin.ID,
		target:  target.ID,
		length:  math.Inf(1),
		meeting: -1,
	}
	s.source[dirIndex(FORWARD)] = locate(origin, from.Coordinates)
	s.source[dirIndex(BACKWARD)] = locate(target, to.Coordinates)
	s.forward = queue.NewMinHeap(
		func(x, y *nbaItem) bool { return x.fFScore < y.fFScore },
		func(item *nbaItem, i int) { item.fIndex = i },
	)
	s.backward = queue.NewMinHeap(
		func(x, y *nbaItem) bool { return x.bFScore < y.bFScore },
		func(item *nbaItem, i int) { item.bIndex = i },
	)

	originItem := s.newItem(origin.ID)
	originItem.fGScore = 0
	originItem.fFScore = n.heuristic(s.source[0], s.source[1])
	targetItem := s.newItem(target.ID)
	targetItem.bGScore = 0
	targetItem.bFScore = n.heuristic(s.source[1], s.source[0])

	s.forward.Push(originItem)
	s.backward.Push(targetItem)
	s.bestF[dirIndex(FORWARD)] = originItem.fFScore
	s.bestF[dirIndex(BACKWARD)] = targetItem.bFScore

	for s.forward.Len() > 0 && s.backward.Len() > 0 {
		if n.stopped(ctx) {
			n.finish()
			return nil, nil
		}
		if targetRank > 0 && n.metadata.DijkstraRank >= targetRank {
			n.logger.Info("rank limit reached", "rank", n.metadata.DijkstraRank)
			break
		}

		n.metadata.DijkstraRank++

		// balance both frontiers, the backward search goes first on ties
		direction := BACKWARD
		if s.forward.Len() < s.backward.Len() {
			direction = FORWARD
		}
		minHeap, _ := alignWithSearchDirection(direction, s.forward, s.backward)
		current := minHeap.Pop()
		n.logger.Debug("settling node", "direction", direction, "item", current.String(), "rank", n.metadata.DijkstraRank)

		if err := n.visitNeighbors(ctx, s, current, direction); err != nil {
			n.finish()
			return nil, err
		}
	}

	if s.meeting < 0 {
		n.logger.Info("no path found", "from", from.ID, "to", to.ID, "rank", n.metadata.DijkstraRank)
		n.finish()
		return nil, nil
	}

	result := n.result(s.path(s.meeting))
	n.logger.Info("found path", "from", from.ID, "to", to.ID, "meeting", s.pool.at(s.meeting).id, "metadata", result.Metadata.String())
	return result, nil
}

// visitNeighbors expands current unless it can not improve the shortest path seen so far
func (n *NBAStar) visitNeighbors(ctx context.Context, s *nbaSearch, current *nbaItem, direction Direction) error {
	own := dirIndex(direction)
	opposite := 1 - own
	currentNode := n.node(current.id)
	gScore := current.gScore(direction)

	// stabilized or rejected nodes are not expanded
	rejected := current.fScore(direction) >= s.length ||
		gScore+s.bestF[opposite]-n.heuristicOf(currentNode, s.source[own]) >= s.length

	if !rejected {
		neighbors, _ := alignWithSearchDirection(direction, currentNode.NextNodes, currentNode.PrevNodes)
		for _, neighborID := range neighbors {
			neighbor, err := n.loadNeighbor(ctx, neighborID)
			if err != nil {
				return err
			}

			// the backward search walks the edge neighbor -> current
			edgeFrom, edgeTo := alignWithSearchDirection(direction, currentNode, neighbor)
			tentative := gScore + n.cost(edgeFrom, edgeTo)

			item, seen := s.pool.get(neighborID)
			if !seen {
				item = s.newItem(neighborID)
			}
			if tentative >= item.gScore(direction) {
				continue
			}

			fScore := tentative + n.heuristicOf(neighbor, s.source[opposite])
			if direction == FORWARD {
				item.fGScore, item.fFScore, item.previous = tentative, fScore, current.pos
			} else {
				item.bGScore, item.bFScore, item.next = tentative, fScore, current.pos
			}
			n.logger.Debug("relaxed edge", "direction", direction, "from", current.id, "to", neighborID, "gScore", tentative, "fScore", fScore)

			minHeap, _ := alignWithSearchDirection(direction, s.forward, s.backward)
			index, _ := alignWithSearchDirection(direction, item.fIndex, item.bIndex)
			if index < 0 {
				minHeap.Push(item)
			} else {
				minHeap.Update(index)
			}

			if s.isMeetingPoint(item) {
				if length := n.pathCost(s, item.pos); length < s.length {
					n.logger.Debug("meeting point", "id", item.id, "length", length)
					s.length = length
					s.meeting = item.pos
				}
			}
		}
	}

	minHeap, _ := alignWithSearchDirection(direction, s.forward, s.backward)
	if minHeap.Len() > 0 {
		s.bestF[own] = minHeap.Peek().fScore(direction)
	}
	return nil
}

func (n *NBAStar) heuristicOf(node graph.Node, p orb.Point) float64 {
	if !node.HasCoordinates {
		return 0
	}
	return n.heuristic(node.Coordinates, p)
}

// pathCost sums the edge costs along both chains of the meeting point
func (n *NBAStar) pathCost(s *nbaSearch, meeting int) float64 {
	ids := s.path(meeting)
	cost := 0.0
	previous := n.node(ids[0])
	for _, id := range ids[1:] {
		node := n.node(id)
		cost += n.cost(previous, node)
		previous = node
	}
	return cost
}

func (s *nbaSearch) newItem(id string) *nbaItem {
	item := &nbaItem{
		id:       id,
		fGScore:  math.Inf(1),
		bGScore:  math.Inf(1),
		fFScore:  math.Inf(1),
		bFScore:  math.Inf(1),
		previous: -1,
		next:     -1,
		fIndex:   -1,
		bIndex:   -1,
	}
	item.pos = s.pool.add(id, item)
	return item
}

// isMeetingPoint reports whether the item is reached from both sides.
// The origin and the target count as reached from their own side.
func (s *nbaSearch) isMeetingPoint(item *nbaItem) bool {
	fromOrigin := item.previous >= 0 || item.id == s.origin
	toTarget := item.next >= 0 || item.id == s.target
	return fromOrigin && toTarget
}

// path returns the node ids from the origin over the meeting point to the target
func (s *nbaSearch) path(meeting int) []string {
	id := func(item *nbaItem) string { return item.id }
	forward := s.pool.reversed(meeting, func(item *nbaItem) int { return item.previous })
	backward := s.pool.chain(s.pool.at(meeting).next, func(item *nbaItem) int { return item.next })
	return append(s.pool.idsOf(forward, id), s.pool.idsOf(backward, id)...)
}

// locate prefers the coordinates of the graph node over the resolved endpoint
func locate(node graph.Node, fallback orb.Point) orb.Point {
	if node.HasCoordinates {
		return node.Coordinates
	}
	return fallback
}
