package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/natevvv/osm-tile-routing/pkg/location"
	"github.com/natevvv/osm-tile-routing/pkg/routing"
	"github.com/spf13/cobra"
)

func runRoute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	router, err := newRouter(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	resolver, err := newResolver(cfg, client)
	if err != nil {
		return err
	}
	resolvers := location.Resolvers{resolver, location.GraphResolver{Graph: router.Graph()}}

	from, err := resolvers.Resolve(ctx, fromKey)
	if err != nil {
		return err
	}
	to, err := resolvers.Resolve(ctx, toKey)
	if err != nil {
		return err
	}
	logger.Info("route", "from", from.ID, "to", to.ID, "algorithm", cfg.Algorithm)

	route, err := router.ComputeRoute(ctx, from.Endpoint(), to.Endpoint(), routing.RouteConfig{TargetRank: targetRank})
	if err != nil {
		return err
	}
	printRoute(cmd, from, to, route)
	return nil
}

func printRoute(cmd *cobra.Command, from, to location.Location, route routing.Route) {
	out := cmd.OutOrStdout()
	if !route.Exists {
		fmt.Fprintf(out, "No path from %v to %v\n", label(from), label(to))
	} else {
		fmt.Fprintf(out, "Path from %v to %v (%v nodes)\n", label(from), label(to), len(route.Waypoints))
		for i, n := range route.Waypoints {
			fmt.Fprintf(out, "%4d %v (%v, %v)\n", i, n.ID, n.Coordinates.Lon(), n.Coordinates.Lat())
		}
	}
	fmt.Fprintln(out, route.Metadata)
}

func label(l location.Location) string {
	if l.Label != "" {
		return l.Label
	}
	return l.ID
}

