package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/natevvv/osm-tile-routing/pkg/config"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/location"
	"github.com/natevvv/osm-tile-routing/pkg/routing"
	"github.com/natevvv/osm-tile-routing/pkg/tile"
)

// newRouter builds the fetcher, warmed with the FMI graph if configured, and the router on top of it
func newRouter(ctx context.Context, c config.Config, client *http.Client, logger *slog.Logger) (*routing.Router, error) {
	var g *graph.NetworkGraph
	if c.GraphFile != "" {
		var err error
		g, err = graph.NewNetworkGraphFromFmiFile(c.GraphFile)
		if err != nil {
			return nil, fmt.Errorf("load graph: %w", err)
		}
		logger.Info("graph loaded", "file", c.GraphFile, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	}

	opts := []tile.Option{
		tile.WithZoom(c.Zoom),
		tile.WithHTTPClient(client),
		tile.WithNoCache(c.NoCache),
		tile.WithLogger(logger),
	}
	if c.TileIndex.Enabled {
		idx, err := tile.LoadIndex(ctx, client, c.TilesBaseURL, c.TileIndex.Threshold)
		if err != nil {
			return nil, fmt.Errorf("load tile index: %w", err)
		}
		logger.Info("tile index loaded", "tiles", idx.Len())
		opts = append(opts, tile.WithIndex(idx))
	}
	fetcher := tile.NewFetcher(c.TilesBaseURL, g, opts...)

	cost, ok := routing.CostByName(c.Cost)
	if !ok {
		return nil, fmt.Errorf("unknown cost %q", c.Cost)
	}
	heuristic, ok := routing.HeuristicByName(c.Heuristic)
	if !ok {
		return nil, fmt.Errorf("unknown heuristic %q", c.Heuristic)
	}
	return routing.NewRouter(fetcher, &c.Algorithm,
		routing.WithCost(cost),
		routing.WithHeuristic(heuristic),
		routing.WithLogger(logger),
	)
}

// newResolver reads a location index file, or asks the location interface for a URL.
// It returns nil when no locations are configured.
func newResolver(c config.Config, client *http.Client) (location.Resolver, error) {
	switch {
	case c.LocationIndex == "":
		return nil, nil
	case strings.HasPrefix(c.LocationIndex, "http://"), strings.HasPrefix(c.LocationIndex, "https://"):
		return location.NewAPI(c.LocationIndex, client), nil
	default:
		idx, err := location.LoadIndexFile(c.LocationIndex)
		if err != nil {
			return nil, fmt.Errorf("load locations: %w", err)
		}
		return idx, nil
	}
}
