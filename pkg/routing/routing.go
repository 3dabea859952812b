package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/natevvv/osm-tile-routing/pkg/geometry"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/graph/path"
	"github.com/natevvv/osm-tile-routing/pkg/tile"
)

// Navigators lists the names accepted by SetNavigator
var Navigators = []string{"dijkstra", "astar", "nbastar"}

// RouteConfig adjusts a single query
type RouteConfig struct {
	Algorithm  string // empty: the navigator set on the router
	TargetRank int    // stop after this many iterations, <= 0 means unbounded
}

// Route is the result of a query
type Route struct {
	Origin      path.Endpoint
	Destination path.Endpoint
	Exists      bool         // a path was found
	Waypoints   []graph.Node // path nodes, origin first
	Length      float64      // summed edge costs
	Metadata    path.Metadata
}

type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
	Tiles int `json:"tiles"`
}

type Router struct {
	fetcher       *tile.Fetcher
	cost          path.CostFunc
	heuristic     path.Heuristic
	logger        *slog.Logger
	navigatorName string
	navigator     path.PathFinder

	// serializes queries
	queryMu sync.Mutex

	mu      sync.Mutex
	running path.PathFinder
}

type Option func(*Router)

func WithCost(cost path.CostFunc) Option {
	return func(r *Router) { r.cost = cost }
}

func WithHeuristic(heuristic path.Heuristic) Option {
	return func(r *Router) { r.heuristic = heuristic }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// NewRouter creates a router on top of the fetcher and its graph. The navigator defaults to nbastar.
func NewRouter(fetcher *tile.Fetcher, navigator *string, opts ...Option) (*Router, error) {
	r := &Router{
		fetcher:   fetcher,
		cost:      path.NodeCost,
		heuristic: geometry.Haversine,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	name := "nbastar"
	if navigator != nil {
		name = *navigator
	}
	if !r.SetNavigator(name) {
		return nil, fmt.Errorf("unknown navigator %q", name)
	}
	return r, nil
}

// SetNavigator switches the default algorithm. It reports false for an unknown name.
func (r *Router) SetNavigator(navigatorType string) bool {
	navigator, ok := r.newNavigator(navigatorType)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigatorName = navigatorType
	r.navigator = navigator
	r.logger.Info("navigator set", "navigator", navigatorType)
	return true
}

func (r *Router) Navigator() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.navigatorName
}

func (r *Router) newNavigator(navigatorType string) (path.PathFinder, bool) {
	opts := []path.Option{
		path.WithFetcher(r.fetcher),
		path.WithCost(r.cost),
		path.WithHeuristic(r.heuristic),
		path.WithLogger(r.logger),
	}
	switch navigatorType {
	case "dijkstra":
		return path.NewDijkstra(opts...), true
	case "astar":
		return path.NewAStar(opts...), true
	case "nbastar":
		return path.NewNBAStar(opts...), true
	}
	return nil, false
}

// ComputeRoute searches a path between both endpoints. Queries run one at a time.
func (r *Router) ComputeRoute(ctx context.Context, origin, destination path.Endpoint, config RouteConfig) (Route, error) {
	r.queryMu.Lock()
	defer r.queryMu.Unlock()

	navigator, name, err := r.selectNavigator(config.Algorithm)
	if err != nil {
		return Route{}, err
	}

	r.mu.Lock()
	r.running = navigator
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = nil
		r.mu.Unlock()
	}()

	route := Route{Origin: origin, Destination: destination}
	result, err := navigator.FindPath(ctx, origin, &destination, config.TargetRank)
	route.Metadata = navigator.Metadata()
	if err != nil {
		r.logger.Error("route failed", "navigator", name, "from", origin.ID, "to", destination.ID, "error", err)
		return route, err
	}
	if result == nil {
		r.logger.Info("no route", "navigator", name, "from", origin.ID, "to", destination.ID, "metadata", route.Metadata)
		return route, nil
	}

	route.Exists = true
	route.Waypoints = result.Path
	route.Length = result.Metadata.Cost
	route.Metadata = result.Metadata
	r.logger.Info("route found", "navigator", name, "from", origin.ID, "to", destination.ID,
		"nodes", len(route.Waypoints), "metadata", route.Metadata)
	return route, nil
}

func (r *Router) selectNavigator(algorithm string) (path.PathFinder, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if algorithm == "" || algorithm == r.navigatorName {
		return r.navigator, r.navigatorName, nil
	}
	navigator, ok := r.newNavigator(algorithm)
	if !ok {
		return nil, "", fmt.Errorf("unknown navigator %q", algorithm)
	}
	return navigator, algorithm, nil
}

// Kill stops the running query, if any
func (r *Router) Kill() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running == nil {
		return false
	}
	r.running.Kill()
	return true
}

// Graph is the graph shared by all navigators of the router
func (r *Router) Graph() *graph.NetworkGraph {
	return r.fetcher.Graph()
}

func (r *Router) GraphStats() GraphStats {
	g := r.fetcher.Graph()
	return GraphStats{
		Nodes: g.NodeCount(),
		Edges: g.EdgeCount(),
		Tiles: r.fetcher.Cache().Len(),
	}
}

// CostByName maps a configured cost name to its function
func CostByName(name string) (path.CostFunc, bool) {
	switch name {
	case "node", "":
		return path.NodeCost, true
	case "distance":
		return path.DistanceCost, true
	case "unit":
		return path.UnitCost, true
	}
	return nil, false
}

// HeuristicByName maps a configured heuristic name to its function
func HeuristicByName(name string) (path.Heuristic, bool) {
	switch name {
	case "haversine", "":
		return geometry.Haversine, true
	case "euclidean":
		return geometry.Euclidean, true
	case "zero":
		return path.ZeroHeuristic, true
	}
	return nil, false
}
