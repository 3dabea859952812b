package openapi_server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/graph/path"
	"github.com/natevvv/osm-tile-routing/pkg/routing"
	"github.com/natevvv/osm-tile-routing/pkg/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphFmi = `5
7
A 1 1 1
B 3 1 5
C 6 1 10
D 6 0 5
E 9 1 4
A B
A C
B C
B D
C E
D E
E C
`

func newTestServer(t *testing.T, tilesDir string) *httptest.Server {
	g, err := graph.NewNetworkGraphFromFmiString(graphFmi)
	require.NoError(t, err)
	router, err := routing.NewRouter(tile.NewFetcher("", g), nil, routing.WithHeuristic(path.ZeroHeuristic))
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(NewDefaultApiService(router, nil, nil), tilesDir))
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, url string, body any) *http.Response {
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestComputeRoute(t *testing.T) {
	server := newTestServer(t, "")

	resp := post(t, server.URL+"/routes", RouteRequest{From: "A", To: "E"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var result RouteResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Found)
	require.GreaterOrEqual(t, len(result.Path), 3)
	assert.Equal(t, "A", result.Path[0].ID)
	assert.Equal(t, "E", result.Path[len(result.Path)-1].ID)
	assert.Equal(t, 9.0, result.Path[len(result.Path)-1].Lon)
	assert.Equal(t, 14.0, result.Metadata.Cost)
	assert.Equal(t, "nbastar", result.Metadata.Algorithm)

	resp = post(t, server.URL+"/routes", RouteRequest{From: "D", To: "A", Algorithm: "dijkstra"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result = RouteResult{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Found)
	assert.Empty(t, result.Path)
	assert.Equal(t, "dijkstra", result.Metadata.Algorithm)
}

func TestComputeRouteErrors(t *testing.T) {
	server := newTestServer(t, "")

	cases := map[string]struct {
		body any
		code int
	}{
		"unknown location":  {RouteRequest{From: "A", To: "Z"}, http.StatusNotFound},
		"unknown navigator": {RouteRequest{From: "A", To: "E", Algorithm: "bfs"}, http.StatusBadRequest},
		"missing field":     {RouteRequest{From: "A"}, http.StatusUnprocessableEntity},
		"unknown field":     {map[string]string{"from": "A", "to": "E", "via": "C"}, http.StatusBadRequest},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			resp := post(t, server.URL+"/routes", c.body)
			assert.Equal(t, c.code, resp.StatusCode)
		})
	}
}

func TestSetNavigator(t *testing.T) {
	server := newTestServer(t, "")

	resp := post(t, server.URL+"/navigator", NavigatorRequest{Navigator: "astar"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, server.URL+"/routes", RouteRequest{From: "A", To: "E"})
	var result RouteResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "astar", result.Metadata.Algorithm)

	resp = post(t, server.URL+"/navigator", NavigatorRequest{Navigator: "contraction-hierarchies"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetGraph(t *testing.T) {
	server := newTestServer(t, "")

	resp, err := http.Get(server.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats routing.GraphStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 5, stats.Nodes)
	assert.Equal(t, 7, stats.Edges)
}

func TestKillRoute(t *testing.T) {
	server := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/routes", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	server := newTestServer(t, "")

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "14", "8389"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "14", "8389", "5495"), []byte("<a> <b> <c> .\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TileIndexName), []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))
	server := newTestServer(t, dir)

	resp, err := http.Get(server.URL + "/tiles/14/8389/5495")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tile.ContentTypeNTriples, resp.Header.Get("Content-Type"))

	resp, err = http.Get(server.URL + "/tiles/" + TileIndexName + "?threshold=500")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	resp, err = http.Get(server.URL + "/tiles/14/0/0")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
