package path

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/natevvv/osm-tile-routing/pkg/geometry"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/paulmach/orb"
)

var ErrTargetRequired = errors.New("bidirectional search needs a target")

// PathFinder computes shortest paths over a graph that is completed tile by tile while the
// search expands.
type PathFinder interface {
	// FindPath searches a path from the origin to the target. Without a target (to == nil) the
	// search runs until targetRank iterations. A targetRank <= 0 means unbounded.
	// No path is reported as (nil, nil).
	FindPath(ctx context.Context, from Endpoint, to *Endpoint, targetRank int) (*Result, error)
	// Kill stops the running search, which then reports no path
	Kill()
	// Metadata describes the last FindPath call, also when it found no path
	Metadata() Metadata
}

// Endpoint is a resolved location: the id of its graph node and where it lies.
type Endpoint struct {
	ID          string
	Coordinates orb.Point
}

func (e Endpoint) node() graph.Node {
	return graph.Node{ID: e.ID, Coordinates: e.Coordinates, HasCoordinates: true}
}

type Result struct {
	Path     []graph.Node // origin first, without adjacency
	Metadata Metadata
}

type Metadata struct {
	RequestCount  int           // tiles requested
	ByteCount     int           // bytes received for the requested tiles
	CacheHits     int           // tiles served from the cache of the tile interface
	DijkstraRank  int           // main loop iterations
	ExecutionTime time.Duration // wall clock time of the query
	Cost          float64       // summed edge costs of the path
}

func (m Metadata) String() string {
	return fmt.Sprintf("rank: %v, cost: %v, requests: %v, bytes: %v, cache hits: %v, time: %v",
		m.DijkstraRank, m.Cost, m.RequestCount, m.ByteCount, m.CacheHits, m.ExecutionTime)
}

// CostFunc returns the cost of traversing the edge from -> to
type CostFunc func(from, to graph.Node) float64

// Heuristic estimates the remaining cost between two locations
type Heuristic func(a, b orb.Point) float64

// NodeCost charges the intrinsic weight of the node an edge leads to
func NodeCost(from, to graph.Node) float64 {
	return to.Cost
}

// DistanceCost charges the great circle distance in meters between both nodes
func DistanceCost(from, to graph.Node) float64 {
	return geometry.Haversine(from.Coordinates, to.Coordinates)
}

// UnitCost charges 1 per edge
func UnitCost(from, to graph.Node) float64 {
	return 1
}

func ZeroHeuristic(a, b orb.Point) float64 {
	return 0
}

type Direction bool

const (
	FORWARD  Direction = false
	BACKWARD Direction = true
)

func (d Direction) String() string {
	if d == FORWARD {
		return "FORWARD"
	}
	return "BACKWARD"
}

// helper function to align the given items a,b with the search direction.
// if FORWARD, a and b don't change
// if BACKWARD, a and b are swapped
func alignWithSearchDirection[T any](searchDirection Direction, a, b T) (T, T) {
	if searchDirection == FORWARD {
		return a, b
	}
	return b, a
}
