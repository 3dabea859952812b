package main

import (
	"log/slog"
	"os"

	"github.com/natevvv/osm-tile-routing/pkg/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	cfg    config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "tilepath",
		Short: "Shortest paths over a graph that is loaded tile by tile",
		Long: `tilepath searches shortest paths with Dijkstra, A* or NBA* while fetching
the tiles of the graph from a tile interface as the search expands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd)
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := cfg.Level()
			if debug {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			return nil
		},
	}

	routeCmd = &cobra.Command{
		Use:   "route",
		Short: "Search a path between two locations",
		Args:  cobra.NoArgs,
		RunE:  runRoute, // Defined in cmd_route.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the route API",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}
)

// route flags
var (
	fromKey    string
	toKey      string
	targetRank int
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.BoolVar(&debug, "debug", false, "log every queue operation")
	flags.String("tiles", "", "base URL of the tile interface, empty for the local graph only")
	flags.Int("zoom", 14, "zoom level of the fetched tiles")
	flags.String("algorithm", "nbastar", "dijkstra, astar or nbastar")
	flags.String("heuristic", "haversine", "haversine, euclidean or zero")
	flags.String("cost", "node", "node, distance or unit")
	flags.Bool("index", false, "resolve tiles with the spatial tile index of the tile interface")
	flags.Int("threshold", 0, "node threshold passed on when loading the tile index")
	flags.Bool("nocache", false, "ask the tile interface to bypass its cache")
	flags.String("graph", "", "FMI graph to start with")
	flags.String("locations", "", "location index file or location interface URL")

	routeCmd.Flags().StringVar(&fromKey, "from", "", "origin location")
	routeCmd.Flags().StringVar(&toKey, "to", "", "destination location")
	routeCmd.Flags().IntVar(&targetRank, "rank", 0, "stop after this many iterations")
	routeCmd.MarkFlagRequired("from")
	routeCmd.MarkFlagRequired("to")

	serveCmd.Flags().String("addr", "", "listen address of the route API")
	serveCmd.Flags().String("tiles-dir", "", "serve the built tiles of this directory below /tiles/")

	rootCmd.AddCommand(routeCmd, serveCmd)
}

// applyFlags overrides the configuration with the flags set on the command line
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("tiles") {
		cfg.TilesBaseURL, _ = flags.GetString("tiles")
	}
	if flags.Changed("zoom") {
		cfg.Zoom, _ = flags.GetInt("zoom")
	}
	if flags.Changed("algorithm") {
		cfg.Algorithm, _ = flags.GetString("algorithm")
	}
	if flags.Changed("heuristic") {
		cfg.Heuristic, _ = flags.GetString("heuristic")
	}
	if flags.Changed("cost") {
		cfg.Cost, _ = flags.GetString("cost")
	}
	if flags.Changed("index") {
		cfg.TileIndex.Enabled, _ = flags.GetBool("index")
	}
	if flags.Changed("threshold") {
		cfg.TileIndex.Threshold, _ = flags.GetInt("threshold")
	}
	if flags.Changed("nocache") {
		cfg.NoCache, _ = flags.GetBool("nocache")
	}
	if flags.Changed("graph") {
		cfg.GraphFile, _ = flags.GetString("graph")
	}
	if flags.Changed("locations") {
		cfg.LocationIndex, _ = flags.GetString("locations")
	}
	if flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("tiles-dir") {
		cfg.Server.TilesDir, _ = flags.GetString("tiles-dir")
	}
}
