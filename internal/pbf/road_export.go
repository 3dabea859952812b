package pbf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/rdf"
	"github.com/natevvv/osm-tile-routing/pkg/road"
	"github.com/natevvv/osm-tile-routing/pkg/tile"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TileIndexFile is the name of the tile index next to the tile directories
const TileIndexFile = "tile-index"

// ExportTiles writes one N-Triples document per tile to dir/z/x/y and the GeoJSON tile index
// to dir/tile-index. It returns the references of the written tiles.
func ExportTiles(g *graph.NetworkGraph, dir string, zoom int, vocabulary rdf.Vocabulary) ([]tile.Reference, error) {
	tiles := tile.Partition(g, zoom, nil)
	refs := tile.References(tiles)
	for _, ref := range refs {
		if err := writeTile(filepath.Join(dir, filepath.FromSlash(string(ref))), tiles[ref], vocabulary); err != nil {
			return nil, fmt.Errorf("tile %v: %w", ref, err)
		}
	}

	data, err := json.Marshal(tile.IndexOf(refs).FeatureCollection())
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, TileIndexFile), data, 0o644); err != nil {
		return nil, err
	}
	return refs, nil
}

func writeTile(filename string, nodes []graph.Node, vocabulary rdf.Vocabulary) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return vocabulary.Encode(file, nodes)
}

// ExportRoadGeoJSON writes the roads as GeoJSON line strings, for inspection in a map viewer
func ExportRoadGeoJSON(roads []*road.Segment, filename string) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range roads {
		f := geojson.NewFeature(orb.LineString(r.Points))
		f.Properties["id"] = int64(r.ID)
		f.Properties["type"] = r.Type.String()
		f.Properties["oneway"] = r.OneWay
		fc.Append(f)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(fc)
}
