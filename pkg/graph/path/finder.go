package path

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/tile"
	"golang.org/x/sync/errgroup"
)

type Option func(*finder)

// WithGraph sets the graph to search when no fetcher is given. Otherwise the graph of the
// fetcher is searched.
func WithGraph(g *graph.NetworkGraph) Option {
	return func(f *finder) { f.graph = g }
}

func WithFetcher(fetcher *tile.Fetcher) Option {
	return func(f *finder) { f.fetcher = fetcher }
}

func WithCost(cost CostFunc) Option {
	return func(f *finder) { f.cost = cost }
}

func WithHeuristic(heuristic Heuristic) Option {
	return func(f *finder) { f.heuristic = heuristic }
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *finder) { f.logger = logger }
}

// finder holds what all searches share: the graph, the tile fetcher and the run metadata
type finder struct {
	graph     *graph.NetworkGraph
	fetcher   *tile.Fetcher
	cost      CostFunc
	heuristic Heuristic
	logger    *slog.Logger

	killed   atomic.Bool
	metadata Metadata
	stats    *tile.Stats
	start    time.Time
}

func (f *finder) init(opts []Option) {
	f.cost = UnitCost
	f.heuristic = ZeroHeuristic
	f.logger = slog.Default()
	for _, opt := range opts {
		opt(f)
	}
	if f.fetcher == nil {
		f.fetcher = tile.NewFetcher("", f.graph, tile.WithLogger(f.logger))
	}
	f.graph = f.fetcher.Graph()
}

func (f *finder) Kill() {
	f.killed.Store(true)
}

func (f *finder) Metadata() Metadata {
	return f.metadata
}

// reset prepares the run metadata of a new query
func (f *finder) reset() {
	f.metadata = Metadata{}
	f.stats = &tile.Stats{}
	f.start = time.Now()
}

// stopped reports whether the search has to be abandoned. A kill request is consumed.
func (f *finder) stopped(ctx context.Context) bool {
	if f.killed.CompareAndSwap(true, false) {
		f.logger.Info("search killed")
		return true
	}
	if err := ctx.Err(); err != nil {
		f.logger.Info("search cancelled", "error", err)
		return true
	}
	return false
}

// finish records the tile statistics and the execution time of the query
func (f *finder) finish() {
	f.metadata.RequestCount = f.stats.RequestCount()
	f.metadata.ByteCount = f.stats.ByteCount()
	f.metadata.CacheHits = f.stats.CacheHits()
	f.metadata.ExecutionTime = time.Since(f.start)
}

// fetchEndpoints loads the tiles of both endpoints (concurrently) unless they were merged
// already. A known node may still be a stub written by a neighboring tile.
func (f *finder) fetchEndpoints(ctx context.Context, from Endpoint, to *Endpoint) error {
	pending := make([]graph.Node, 0, 2)
	endpoints := []*Endpoint{&from, to}
	for _, e := range endpoints {
		if e == nil {
			continue
		}
		if n := f.endpointNode(*e); f.fetcher.NeedsFetch(n) {
			pending = append(pending, n)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	eg, ctx := errgroup.WithContext(ctx)
	for _, n := range pending {
		n := n
		eg.Go(func() error {
			return f.fetcher.FetchNodeTile(ctx, n, f.stats)
		})
	}
	return eg.Wait()
}

// endpointNode locates the endpoint by its graph node if that one has coordinates
func (f *finder) endpointNode(e Endpoint) graph.Node {
	n := e.node()
	if known, ok := f.graph.Get(e.ID); ok && known.HasCoordinates {
		n.Coordinates = known.Coordinates
	}
	return n
}

// loadNeighbor returns the neighbor, after merging its tile if its adjacency may be incomplete
func (f *finder) loadNeighbor(ctx context.Context, id string) (graph.Node, error) {
	neighbor, _ := f.graph.Get(id)
	if !f.fetcher.NeedsFetch(neighbor) {
		return neighbor, nil
	}
	if err := f.fetcher.FetchNodeTile(ctx, neighbor, f.stats); err != nil {
		return neighbor, err
	}
	neighbor, _ = f.graph.Get(id)
	return neighbor, nil
}

// node returns the graph node of a pool entry
func (f *finder) node(id string) graph.Node {
	n, _ := f.graph.Get(id)
	return n
}

// result strips the path nodes and sums the edge costs
func (f *finder) result(ids []string) *Result {
	path := make([]graph.Node, len(ids))
	for i, id := range ids {
		path[i] = f.node(id)
	}
	for i := 0; i < len(path)-1; i++ {
		f.metadata.Cost += f.cost(path[i], path[i+1])
	}
	for i := range path {
		path[i] = path[i].Stripped()
	}
	f.finish()
	return &Result{Path: path, Metadata: f.metadata}
}
