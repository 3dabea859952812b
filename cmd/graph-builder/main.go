package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/natevvv/osm-tile-routing/internal/pbf"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/rdf"
)

func main() {
	pbfFile := flag.String("pbf", "", "OSM PBF extract to import")
	outDir := flag.String("out", "tiles", "directory of the exported tiles")
	zoom := flag.Int("zoom", 14, "zoom level of the exported tiles")
	base := flag.String("base", "https://www.openstreetmap.org", "IRI prefix of the node ids")
	fmiFile := flag.String("fmi", "", "also write the graph in fmi format")
	geojsonFile := flag.String("geojson", "", "also write the imported roads as GeoJSON")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	if *pbfFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	start := time.Now()
	roadImporter := pbf.NewRoadImporter(*pbfFile, logger)
	if err := roadImporter.Import(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("[TIME] Import: %s\n", time.Since(start))

	if *geojsonFile != "" {
		if err := pbf.ExportRoadGeoJSON(roadImporter.Roads(), *geojsonFile); err != nil {
			log.Fatal(err)
		}
	}

	start = time.Now()
	g := roadImporter.Graph(*base)
	fmt.Printf("[TIME] Build graph: %s\n", time.Since(start))
	fmt.Printf("Nodes: %d\n", g.NodeCount())
	fmt.Printf("Edges: %d\n", g.EdgeCount())

	if *fmiFile != "" {
		start = time.Now()
		if err := graph.WriteFmi(g, *fmiFile); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("[TIME] Export fmi: %s\n", time.Since(start))
	}

	start = time.Now()
	refs, err := pbf.ExportTiles(g, *outDir, *zoom, rdf.DefaultVocabulary)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("[TIME] Export tiles: %s\n", time.Since(start))
	fmt.Printf("Exported %d tiles to %s\n", len(refs), *outDir)
}
