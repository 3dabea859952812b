package location

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/natevvv/osm-tile-routing/pkg/geometry"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexJSON = `[
	["brussels", {"id": "http://example.org/op/BE0001", "label": "Brussels-South", "wkt": "POINT(4.336 50.836)"}],
	["antwerp", {"id": "http://example.org/op/BE0002", "label": "Antwerp-Central", "wkt": "<http://www.opengis.net/def/crs/OGC/1.3/CRS84> POINT(4.421 51.217)"}]
]`

func TestIndexFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(filename, []byte(indexJSON), 0o644))

	idx, err := LoadIndexFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	l, err := idx.Resolve(context.Background(), "antwerp")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/op/BE0002", l.ID)
	assert.Equal(t, "Antwerp-Central", l.Label)
	assert.Equal(t, 4.421, l.Coordinates.Lon())
	assert.Equal(t, 51.217, l.Coordinates.Lat())
	assert.Equal(t, l.ID, l.Endpoint().ID)
	assert.Equal(t, l.Coordinates, l.Endpoint().Coordinates)

	_, err = idx.Resolve(context.Background(), "ghent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndexInvalidGeometry(t *testing.T) {
	_, err := ReadIndex(strings.NewReader(`[["x", {"id": "x", "wkt": "LINESTRING(0 0, 1 1)"}]]`))
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)

	_, err = ReadIndex(strings.NewReader(`{"x": 1}`))
	assert.Error(t, err)
}

func TestAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/location/Brussels%20South":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(Location{ID: "http://example.org/op/BE0001", Label: "Brussels-South", WKT: "POINT(4.336 50.836)"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	api := NewAPI(server.URL+"/", nil)
	l, err := api.Resolve(context.Background(), "Brussels South")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/op/BE0001", l.ID)
	assert.Equal(t, 50.836, l.Coordinates.Lat())

	_, err = api.Resolve(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolvers(t *testing.T) {
	g := graph.NewNetworkGraph()
	g.SetNode(graph.NodePatch{ID: "A", Coordinates: graph.Coords(4.35, 50.85)})
	g.SetNode(graph.NodePatch{ID: "A", NextNode: "B"})

	idx, err := ReadIndex(strings.NewReader(`[["Brussels", {"id": "X", "label": "Brussels", "wkt": "POINT(4.36 50.84)"}]]`))
	require.NoError(t, err)
	r := Resolvers{nil, idx, GraphResolver{Graph: g}}

	l, err := r.Resolve(context.Background(), "Brussels")
	require.NoError(t, err)
	assert.Equal(t, "X", l.ID)

	l, err = r.Resolve(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{4.35, 50.85}, l.Endpoint().Coordinates)

	_, err = r.Resolve(context.Background(), "B")
	assert.ErrorIs(t, err, ErrNotFound, "nodes without coordinates cannot be located")
}
