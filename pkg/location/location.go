// Package location resolves human readable location keys to graph nodes.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/natevvv/osm-tile-routing/pkg/geometry"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/graph/path"
	"github.com/paulmach/orb"
)

var ErrNotFound = errors.New("location not found")

// Location is a named graph node. Coordinates are parsed from WKT.
type Location struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	WKT         string    `json:"wkt"`
	Coordinates orb.Point `json:"-"`
}

// Endpoint turns the location into the input of a path search
func (l Location) Endpoint() path.Endpoint {
	return path.Endpoint{ID: l.ID, Coordinates: l.Coordinates}
}

func (l *Location) parse() error {
	p, err := geometry.ParseWKTPoint(l.WKT)
	if err != nil {
		return fmt.Errorf("location %v: %w", l.ID, err)
	}
	l.Coordinates = p
	return nil
}

type Resolver interface {
	Resolve(ctx context.Context, key string) (Location, error)
}

// Resolvers asks each resolver in turn until one knows the key
type Resolvers []Resolver

func (rs Resolvers) Resolve(ctx context.Context, key string) (Location, error) {
	for _, r := range rs {
		if r == nil {
			continue
		}
		l, err := r.Resolve(ctx, key)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return l, err
		}
	}
	return Location{}, fmt.Errorf("%w: %v", ErrNotFound, key)
}

// GraphResolver knows the located nodes of a graph by their id
type GraphResolver struct {
	Graph *graph.NetworkGraph
}

func (r GraphResolver) Resolve(ctx context.Context, key string) (Location, error) {
	n, ok := r.Graph.Get(key)
	if !ok || !n.HasCoordinates {
		return Location{}, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	return Location{ID: n.ID, Label: n.ID, WKT: geometry.FormatWKTPoint(n.Coordinates), Coordinates: n.Coordinates}, nil
}

// IndexFile resolves locations from a local index: a JSON array of [key, location] pairs.
type IndexFile struct {
	locations map[string]Location
}

func LoadIndexFile(filename string) (*IndexFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadIndex(file)
}

func ReadIndex(r io.Reader) (*IndexFile, error) {
	var entries [][2]json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("location index: %w", err)
	}
	idx := &IndexFile{locations: make(map[string]Location, len(entries))}
	for i, entry := range entries {
		var key string
		if err := json.Unmarshal(entry[0], &key); err != nil {
			return nil, fmt.Errorf("location index entry %d: %w", i, err)
		}
		var l Location
		if err := json.Unmarshal(entry[1], &l); err != nil {
			return nil, fmt.Errorf("location index entry %v: %w", key, err)
		}
		if err := l.parse(); err != nil {
			return nil, err
		}
		idx.locations[key] = l
	}
	return idx, nil
}

func (idx *IndexFile) Resolve(ctx context.Context, key string) (Location, error) {
	l, ok := idx.locations[key]
	if !ok {
		return Location{}, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	return l, nil
}

func (idx *IndexFile) Len() int {
	return len(idx.locations)
}

// API resolves locations with the location interface next to the tiles: {base}/location/{key}
type API struct {
	base   string
	client *http.Client
}

func NewAPI(base string, client *http.Client) *API {
	if client == nil {
		client = http.DefaultClient
	}
	return &API{base: strings.TrimSuffix(base, "/"), client: client}
}

func (a *API) Resolve(ctx context.Context, key string) (Location, error) {
	u := a.base + "/location/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Location{}, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Location{}, fmt.Errorf("resolve %v: %v returned %v", key, u, resp.Status)
	}

	var l Location
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return Location{}, fmt.Errorf("resolve %v: %w", key, err)
	}
	if err := l.parse(); err != nil {
		return Location{}, err
	}
	return l, nil
}
