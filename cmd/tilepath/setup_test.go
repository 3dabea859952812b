package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/natevvv/osm-tile-routing/pkg/config"
	"github.com/natevvv/osm-tile-routing/pkg/graph/path"
	"github.com/natevvv/osm-tile-routing/pkg/location"
	"github.com/natevvv/osm-tile-routing/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphFmi = `3
2
A 1 1 1
B 2 1 2
C 3 1 3
A B
B C
`

func TestNewRouter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "graph.fmi")
	require.NoError(t, os.WriteFile(filename, []byte(graphFmi), 0o644))

	c := config.Default()
	c.GraphFile = filename
	c.Algorithm = "dijkstra"
	router, err := newRouter(context.Background(), c, http.DefaultClient, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, routing.GraphStats{Nodes: 3, Edges: 2}, router.GraphStats())

	route, err := router.ComputeRoute(context.Background(),
		path.Endpoint{ID: "A"}, path.Endpoint{ID: "C"}, routing.RouteConfig{})
	require.NoError(t, err)
	assert.True(t, route.Exists)
	assert.Equal(t, 5.0, route.Length)

	c.GraphFile = filepath.Join(t.TempDir(), "missing.fmi")
	_, err = newRouter(context.Background(), c, http.DefaultClient, slog.Default())
	assert.Error(t, err)
}

func TestNewResolver(t *testing.T) {
	c := config.Default()
	r, err := newResolver(c, http.DefaultClient)
	require.NoError(t, err)
	assert.Nil(t, r)

	c.LocationIndex = "https://example.org/era"
	r, err = newResolver(c, http.DefaultClient)
	require.NoError(t, err)
	assert.IsType(t, &location.API{}, r)

	c.LocationIndex = filepath.Join(t.TempDir(), "locations.json")
	require.NoError(t, os.WriteFile(c.LocationIndex, []byte(`[["home", {"id": "A", "wkt": "POINT(1 1)"}]]`), 0o644))
	r, err = newResolver(c, http.DefaultClient)
	require.NoError(t, err)
	l, err := r.Resolve(context.Background(), "home")
	require.NoError(t, err)
	assert.Equal(t, "A", l.ID)
}
