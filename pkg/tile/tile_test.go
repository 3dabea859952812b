package tile

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tileBackend struct {
	*httptest.Server
	mu       sync.Mutex
	requests map[string]int
	queries  []string
	total    atomic.Int64
}

// newTileBackend serves the given handler and counts the requests per path
func newTileBackend(t *testing.T, handler http.HandlerFunc) *tileBackend {
	b := &tileBackend{requests: make(map[string]int)}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests[r.URL.Path]++
		b.queries = append(b.queries, r.URL.RawQuery)
		b.mu.Unlock()
		b.total.Add(1)
		handler(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *tileBackend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[path]
}

func nTriples(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/n-triples; charset=utf-8")
		fmt.Fprint(w, body)
	}
}

const tileBody = `<http://example.org/a> <http://www.w3.org/2003/01/geo/wgs84_pos#long> "4.35" .
<http://example.org/a> <http://www.w3.org/2003/01/geo/wgs84_pos#lat> "50.85" .
<http://example.org/a> <http://data.europa.eu/949/linkedTo> <http://example.org/b> .
`

func located(id string, lon, lat float64) graph.Node {
	return graph.Node{ID: id, Coordinates: orb.Point{lon, lat}, HasCoordinates: true}
}

func TestReference(t *testing.T) {
	// Brussels at zoom 14
	ref := At(orb.Point{4.35, 50.85}, 14)
	assert.Equal(t, Reference("14/8389/5495"), ref)

	parsed, err := ParseReference("/14/8389/5495")
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
	assert.Equal(t, ref, ReferenceOf(parsed.Tile()))

	_, err = ParseReference("1/2/0")
	assert.Error(t, err)
	_, err = ParseReference("14/8389")
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	c := NewCache()
	assert.True(t, c.Add("1/0/0"))
	assert.False(t, c.Add("1/0/0"))
	assert.True(t, c.Add("1/1/0"))
	assert.True(t, c.Has("1/0/0"))
	assert.False(t, c.Has("1/1/1"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []Reference{"1/0/0", "1/1/0"}, c.References())
}

func TestFetchNodeTile(t *testing.T) {
	backend := newTileBackend(t, nTriples(tileBody))
	g := graph.NewNetworkGraph()
	f := NewFetcher(backend.URL, g, WithZoom(14))

	node := located("http://example.org/a", 4.35, 50.85)
	assert.True(t, f.NeedsFetch(node))

	stats := &Stats{}
	require.NoError(t, f.FetchNodeTile(context.Background(), node, stats))

	assert.Equal(t, 1, backend.count("/14/8389/5495"))
	assert.Equal(t, 1, stats.RequestCount())
	assert.Equal(t, len(tileBody), stats.ByteCount())
	assert.Equal(t, 0, stats.CacheHits())
	assert.True(t, f.Cached(node))
	assert.False(t, f.NeedsFetch(node))

	a, ok := g.Get("http://example.org/a")
	require.True(t, ok)
	assert.True(t, a.HasCoordinates)
	assert.Equal(t, []string{"http://example.org/b"}, a.NextNodes)
}

func TestCacheMonotonicity(t *testing.T) {
	backend := newTileBackend(t, nTriples(tileBody))
	f := NewFetcher(backend.URL, nil, WithZoom(14))
	node := located("http://example.org/a", 4.35, 50.85)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.FetchNodeTile(context.Background(), node, nil))
			// no caller returns before the tile is merged
			a, ok := f.Graph().Get(node.ID)
			assert.True(t, ok)
			assert.Equal(t, []string{"http://example.org/b"}, a.NextNodes)
		}()
	}
	wg.Wait()
	for i := 0; i < 3; i++ {
		require.NoError(t, f.FetchNodeTile(context.Background(), node, nil))
	}

	assert.Equal(t, int64(1), backend.total.Load())
	assert.Equal(t, 1, f.Cache().Len())

	// a second fetcher sharing the cache never requests the tile again
	other := NewFetcher(backend.URL, f.Graph(), WithZoom(14), WithCache(f.Cache()))
	require.NoError(t, other.FetchNodeTile(context.Background(), node, nil))
	assert.Equal(t, int64(1), backend.total.Load())
}

func TestFetchMissingCoordinates(t *testing.T) {
	backend := newTileBackend(t, nTriples(tileBody))
	f := NewFetcher(backend.URL, nil)

	err := f.FetchNodeTile(context.Background(), graph.Node{ID: "nowhere"}, nil)
	assert.ErrorIs(t, err, ErrMissingCoordinates)
	assert.True(t, f.NeedsFetch(graph.Node{ID: "nowhere"}))
	assert.Equal(t, int64(0), backend.total.Load())
}

func TestFetchUnsupportedFormat(t *testing.T) {
	backend := newTileBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"nodes": []}`)
	})
	f := NewFetcher(backend.URL, nil)

	err := f.FetchNodeTile(context.Background(), located("a", 4.35, 50.85), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, `{"nodes": []}`, string(fetchErr.Payload))
}

func TestFetchStatus(t *testing.T) {
	backend := newTileBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	f := NewFetcher(backend.URL, nil)
	node := located("a", 4.35, 50.85)

	err := f.FetchNodeTile(context.Background(), node, nil)
	assert.ErrorIs(t, err, ErrTileStatus)
	assert.False(t, f.Cached(node), "failed tiles are not cached")
}

func TestFetchInvalidTriples(t *testing.T) {
	backend := newTileBackend(t, nTriples("this is not n-triples\n"))
	f := NewFetcher(backend.URL, nil)

	err := f.FetchNodeTile(context.Background(), located("a", 4.35, 50.85), nil)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "this is not n-triples\n", string(fetchErr.Payload))
	assert.True(t, f.Cached(located("a", 4.35, 50.85)), "invalid tiles are not requested again")
}

func TestFetchNoCacheAndCacheHits(t *testing.T) {
	backend := newTileBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "HIT from edge")
		nTriples(tileBody)(w, r)
	})
	f := NewFetcher(backend.URL, nil, WithNoCache(true))
	stats := &Stats{}

	require.NoError(t, f.FetchNodeTile(context.Background(), located("a", 4.35, 50.85), stats))
	assert.Equal(t, []string{"nocache=true"}, backend.queries)
	assert.Equal(t, 1, stats.CacheHits())
}

func TestIndexLookup(t *testing.T) {
	coarse := At(orb.Point{4.35, 50.85}, 10)
	fine := At(orb.Point{2.35, 48.85}, 14)
	idx := IndexOf([]Reference{coarse, fine})
	assert.Equal(t, 2, idx.Len())

	ref, ok := idx.Lookup(orb.Point{4.35, 50.85}, 14)
	require.True(t, ok)
	assert.Equal(t, coarse, ref)

	ref, ok = idx.Lookup(orb.Point{2.35, 48.85}, 14)
	require.True(t, ok)
	assert.Equal(t, fine, ref)

	_, ok = idx.Lookup(orb.Point{-70, -30}, 14)
	assert.False(t, ok)

	// zooms deeper than the limit are not considered
	_, ok = idx.Lookup(orb.Point{2.35, 48.85}, 13)
	assert.False(t, ok)
}

func TestLoadIndex(t *testing.T) {
	coarse := At(orb.Point{4.35, 50.85}, 10)
	fc := IndexOf([]Reference{coarse}).FeatureCollection()
	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	backend := newTileBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tile-index" {
			w.Header().Set("Content-Type", "application/geo+json")
			w.Write(data)
			return
		}
		nTriples(tileBody)(w, r)
	})

	idx, err := LoadIndex(context.Background(), nil, backend.URL, 500)
	require.NoError(t, err)
	assert.Equal(t, []string{"threshold=500"}, backend.queries)
	assert.Equal(t, 1, idx.Len())

	f := NewFetcher(backend.URL, nil, WithZoom(14), WithIndex(idx))
	node := located("http://example.org/a", 4.35, 50.85)
	ref, err := f.Reference(node)
	require.NoError(t, err)
	assert.Equal(t, coarse, ref)

	require.NoError(t, f.FetchNodeTile(context.Background(), node, nil))
	assert.Equal(t, 1, backend.count("/"+string(coarse)))
}

func TestNewIndexRejectsIncompleteFeatures(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{0, 0})
	f.Properties["z"] = 1
	fc.Append(f)
	_, err := NewIndex(fc)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing"))
}

func TestNewIndexRejectsInvalidCoordinates(t *testing.T) {
	cases := map[string]string{
		"string":   `{"z": "14", "x": 8389, "y": 5495}`,
		"fraction": `{"z": 14, "x": 8389.5, "y": 5495}`,
		"negative": `{"z": 14, "x": -1, "y": 5495}`,
		"zoom":     `{"z": 40, "x": 1, "y": 1}`,
		"null":     `{"z": 14, "x": null, "y": 5495}`,
		"outside":  `{"z": 2, "x": 4, "y": 0}`,
	}
	for name, properties := range cases {
		t.Run(name, func(t *testing.T) {
			raw := `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": ` + properties + `}]}`
			fc, err := geojson.UnmarshalFeatureCollection([]byte(raw))
			require.NoError(t, err)
			assert.NotPanics(t, func() {
				_, err = NewIndex(fc)
			})
			assert.Error(t, err)
		})
	}
}

func TestPartition(t *testing.T) {
	g := graph.NewNetworkGraph()
	g.SetNode(graph.NodePatch{ID: "P", Coordinates: graph.Coords(4.35, 50.85), Cost: graph.Float(3), NextNode: "Q"})
	g.SetNode(graph.NodePatch{ID: "P", NextNode: "R"})
	g.SetNode(graph.NodePatch{ID: "Q", Coordinates: graph.Coords(4.36, 50.851), Cost: graph.Float(7)})
	g.SetNode(graph.NodePatch{ID: "R", Coordinates: graph.Coords(4.351, 50.85)})
	g.SetNode(graph.NodePatch{ID: "U", NextNode: "P"})

	tiles := Partition(g, 14, nil)
	require.Equal(t, []Reference{"14/8389/5495", "14/8390/5495"}, References(tiles))

	byID := func(nodes []graph.Node) map[string]graph.Node {
		m := make(map[string]graph.Node)
		for _, n := range nodes {
			m[n.ID] = n
		}
		return m
	}

	west := byID(tiles["14/8389/5495"])
	require.Len(t, west, 3, "unlocated nodes are left out")
	assert.Equal(t, []string{"Q", "R"}, west["P"].NextNodes)
	assert.Equal(t, 3.0, west["P"].Cost)
	assert.True(t, west["Q"].HasCoordinates, "the foreign end of a border edge is located")
	assert.False(t, west["Q"].HasCost)
	assert.Empty(t, west["Q"].NextNodes)

	east := byID(tiles["14/8390/5495"])
	require.Len(t, east, 2)
	assert.Equal(t, []string{"Q"}, east["P"].NextNodes, "the border edge is repeated")
	assert.False(t, east["P"].HasCost)
	assert.Equal(t, 7.0, east["Q"].Cost)
}
