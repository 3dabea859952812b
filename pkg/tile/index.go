package tile

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// Index maps coordinates to tiles of variable zoom. It is built from the GeoJSON tile index
// published next to the tiles, one feature per tile with the tile bound as geometry and the
// z, x and y properties.
type Index struct {
	bounds map[Reference]orb.Bound
}

func NewIndex(fc *geojson.FeatureCollection) (*Index, error) {
	idx := &Index{bounds: make(map[Reference]orb.Bound)}
	for i, f := range fc.Features {
		var zxy [3]uint32
		for j, key := range []string{"z", "x", "y"} {
			v, err := tileCoordinate(f.Properties, key)
			if err != nil {
				return nil, fmt.Errorf("tile index feature %d: %w", i, err)
			}
			zxy[j] = v
		}
		if zxy[0] > maxZoom || zxy[1] >= 1<<zxy[0] || zxy[2] >= 1<<zxy[0] {
			return nil, fmt.Errorf("tile index feature %d: tile outside of zoom %d", i, zxy[0])
		}
		t := maptile.New(zxy[1], zxy[2], maptile.Zoom(zxy[0]))
		bound := t.Bound()
		if f.Geometry != nil {
			bound = f.Geometry.Bound()
		}
		idx.bounds[ReferenceOf(t)] = bound
	}
	return idx, nil
}

// tileCoordinate reads a non-negative integer property. Decoded JSON numbers are float64.
func tileCoordinate(p geojson.Properties, key string) (uint32, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing %v", key)
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	default:
		return 0, fmt.Errorf("%v is not a number: %v", key, v)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, fmt.Errorf("%v is not a tile coordinate: %v", key, v)
	}
	return uint32(f), nil
}

// IndexOf creates the index of the given tiles
func IndexOf(refs []Reference) *Index {
	idx := &Index{bounds: make(map[Reference]orb.Bound)}
	for _, ref := range refs {
		idx.bounds[ref] = ref.Tile().Bound()
	}
	return idx
}

// LoadIndex retrieves {base}/tile-index. A positive threshold is passed on to the tile
// interface, which uses it to decide how deep tiles are split.
func LoadIndex(ctx context.Context, client *http.Client, base string, threshold int) (*Index, error) {
	u := strings.TrimSuffix(base, "/") + "/tile-index"
	if threshold > 0 {
		u += "?" + url.Values{"threshold": {strconv.Itoa(threshold)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %v returned %v", ErrTileStatus, u, resp.Status)
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("tile index %v: %w", u, err)
	}
	return NewIndex(fc)
}

// Lookup returns the deepest indexed tile with zoom <= maxZoom which contains p
func (idx *Index) Lookup(p orb.Point, maxZoom int) (Reference, bool) {
	if idx == nil {
		return "", false
	}
	for z := maxZoom; z >= 0; z-- {
		ref := At(p, z)
		if bound, ok := idx.bounds[ref]; ok && bound.Contains(p) {
			return ref, true
		}
	}
	return "", false
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.bounds)
}

// FeatureCollection serializes the index, sorted by reference
func (idx *Index) FeatureCollection() *geojson.FeatureCollection {
	refs := make([]Reference, 0, len(idx.bounds))
	for ref := range idx.bounds {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })

	fc := geojson.NewFeatureCollection()
	for _, ref := range refs {
		t := ref.Tile()
		f := geojson.NewFeature(idx.bounds[ref].ToPolygon())
		f.Properties["z"] = int(t.Z)
		f.Properties["x"] = int(t.X)
		f.Properties["y"] = int(t.Y)
		fc.Append(f)
	}
	return fc
}
