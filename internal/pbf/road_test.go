package pbf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/rdf"
	"github.com/natevvv/osm-tile-routing/pkg/road"
	"github.com/natevvv/osm-tile-routing/pkg/tile"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://example.org/osm"

// three nodes in Brussels, the last one east of the tile border at zoom 14
func testImporter() *RoadImporter {
	ri := NewRoadImporter("brussels.osm.pbf", nil)
	s := road.NewSegment(1, road.Primary, map[string]string{"highway": "primary"})
	s.Add(10, orb.Point{4.3500, 50.850})
	s.Add(11, orb.Point{4.3505, 50.851})
	s.Add(12, orb.Point{4.3600, 50.851})
	s.Finish()
	ri.roads = append(ri.roads, s)
	return ri
}

func TestImportMissingFile(t *testing.T) {
	ri := NewRoadImporter(filepath.Join(t.TempDir(), "missing.osm.pbf"), nil)
	assert.Error(t, ri.Import())
}

func TestExportTiles(t *testing.T) {
	g := testImporter().Graph(base)
	require.Equal(t, 3, g.NodeCount())
	dir := t.TempDir()

	refs, err := ExportTiles(g, dir, 14, rdf.DefaultVocabulary)
	require.NoError(t, err)
	require.Equal(t, []tile.Reference{"14/8389/5495", "14/8390/5495"}, refs, "the road crosses a tile border")

	merged := graph.NewNetworkGraph()
	for _, ref := range refs {
		file, err := os.Open(filepath.Join(dir, string(ref)))
		require.NoError(t, err)
		_, err = rdf.DefaultVocabulary.Apply(file, merged)
		file.Close()
		require.NoError(t, err)
	}
	assert.Equal(t, g.AsString(), merged.AsString())

	data, err := os.ReadFile(filepath.Join(dir, TileIndexFile))
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	idx, err := tile.NewIndex(fc)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	ref, ok := idx.Lookup(orb.Point{4.3600, 50.851}, 14)
	assert.True(t, ok)
	assert.Equal(t, refs[1], ref)
}

func TestExportRoadGeoJSON(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "roads.geojson")
	require.NoError(t, ExportRoadGeoJSON(testImporter().Roads(), filename))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Primary", fc.Features[0].Properties.MustString("type"))
	assert.Len(t, fc.Features[0].Geometry.(orb.LineString), 3)
}
