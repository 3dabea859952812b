package tile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/rdf"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	ContentTypeNTriples = "application/n-triples"
	ContentTypeJSON     = "application/json"
)

// Fetcher loads the tiles of the nodes a search runs into and merges them into the graph.
// Every tile is requested at most once per cache, also by concurrent callers.
type Fetcher struct {
	baseURL    string
	zoom       int
	graph      *graph.NetworkGraph
	cache      *Cache
	client     *http.Client
	noCache    bool
	logger     *slog.Logger
	vocabulary rdf.Vocabulary
	index      *Index

	group singleflight.Group
}

type Option func(*Fetcher)

func WithZoom(zoom int) Option {
	return func(f *Fetcher) { f.zoom = zoom }
}

// WithCache shares a cache between fetchers of the same graph
func WithCache(cache *Cache) Option {
	return func(f *Fetcher) { f.cache = cache }
}

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithNoCache asks the tile interface to bypass its own cache (?nocache=true)
func WithNoCache(noCache bool) Option {
	return func(f *Fetcher) { f.noCache = noCache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

func WithVocabulary(v rdf.Vocabulary) Option {
	return func(f *Fetcher) { f.vocabulary = v }
}

// WithIndex resolves tiles through a spatial index instead of the fixed zoom
func WithIndex(idx *Index) Option {
	return func(f *Fetcher) { f.index = idx }
}

func NewFetcher(baseURL string, g *graph.NetworkGraph, opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		zoom:       14,
		graph:      g,
		client:     http.DefaultClient,
		logger:     slog.Default(),
		vocabulary: rdf.DefaultVocabulary,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.graph == nil {
		f.graph = graph.NewNetworkGraph()
	}
	if f.cache == nil {
		f.cache = NewCache()
	}
	return f
}

func (f *Fetcher) Graph() *graph.NetworkGraph { return f.graph }
func (f *Fetcher) Cache() *Cache              { return f.cache }
func (f *Fetcher) Zoom() int                  { return f.zoom }

// Reference returns the tile a node belongs to
func (f *Fetcher) Reference(node graph.Node) (Reference, error) {
	if !node.HasCoordinates {
		return "", fmt.Errorf("%w: %v", ErrMissingCoordinates, node.ID)
	}
	if ref, ok := f.index.Lookup(node.Coordinates, f.zoom); ok {
		return ref, nil
	}
	return At(node.Coordinates, f.zoom), nil
}

// Cached reports whether the tile of the node was already merged
func (f *Fetcher) Cached(node graph.Node) bool {
	ref, err := f.Reference(node)
	return err == nil && f.cache.Has(ref)
}

// NeedsFetch reports whether the adjacency of the node may still be incomplete
func (f *Fetcher) NeedsFetch(node graph.Node) bool {
	return !f.Cached(node)
}

// FetchNodeTile makes sure the tile of the node is merged into the graph.
// Requests made on behalf of this call are recorded in stats.
func (f *Fetcher) FetchNodeTile(ctx context.Context, node graph.Node, stats *Stats) error {
	ref, err := f.Reference(node)
	if err != nil {
		return err
	}
	return f.FetchTile(ctx, ref, stats)
}

// FetchTile merges the tile into the graph unless it is cached already.
// Without a base URL nothing is requested and the tile only gets marked as merged.
// A tile is marked once its merge is complete, so a cached tile is never seen half merged.
func (f *Fetcher) FetchTile(ctx context.Context, ref Reference, stats *Stats) error {
	if f.cache.Has(ref) {
		return nil
	}
	_, err, _ := f.group.Do(string(ref), func() (any, error) {
		if f.cache.Has(ref) {
			return nil, nil
		}
		if f.baseURL == "" {
			f.cache.Add(ref)
			return nil, nil
		}
		return nil, f.fetch(ctx, ref, stats)
	})
	return err
}

func (f *Fetcher) tileURL(ref Reference) string {
	u := f.baseURL + "/" + string(ref)
	if f.noCache {
		u += "?nocache=true"
	}
	return u
}

func (f *Fetcher) fetch(ctx context.Context, ref Reference, stats *Stats) (err error) {
	u := f.tileURL(ref)
	ctx, span := tracer.Start(ctx, "tile.fetch", trace.WithAttributes(
		attribute.String("tile.reference", string(ref)),
		attribute.String("tile.url", u),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	f.logger.Info("fetching tile", "tile", ref, "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{Reference: ref, URL: u, Err: err}
	}
	req.Header.Set("Accept", ContentTypeNTriples)

	resp, err := f.client.Do(req)
	if err != nil {
		tileRequestsTotal.WithLabelValues("error").Inc()
		return &FetchError{Reference: ref, URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tileRequestsTotal.WithLabelValues("error").Inc()
		return &FetchError{Reference: ref, URL: u, Payload: body, Err: err}
	}

	cacheHit := isCacheHit(resp.Header)
	stats.addRequest(len(body), cacheHit)
	tileRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	tileBytesTotal.Add(float64(len(body)))
	if cacheHit {
		tileCacheHitsTotal.Inc()
	}
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int("tile.bytes", len(body)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Reference: ref, URL: u, Payload: body, Err: fmt.Errorf("%w: %v", ErrTileStatus, resp.Status)}
	}

	// invalid tiles are cached as well
	mergeErr := f.merge(ref, resp.Header.Get("Content-Type"), body, cacheHit)
	f.cache.Add(ref)
	if mergeErr != nil {
		return &FetchError{Reference: ref, URL: u, Payload: body, Err: mergeErr}
	}
	return nil
}

func (f *Fetcher) merge(ref Reference, contentType string, body []byte, cacheHit bool) error {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case ContentTypeNTriples:
		n, err := f.vocabulary.Apply(bytes.NewReader(body), f.graph)
		if err != nil {
			f.logger.Error("invalid tile", "tile", ref, "error", err, "payload", string(body))
			return err
		}
		f.logger.Debug("merged tile", "tile", ref, "triples", n, "bytes", len(body), "cacheHit", cacheHit)
	case ContentTypeJSON:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, mediaType)
	default:
		f.logger.Warn("ignoring tile with unknown content type", "tile", ref, "contentType", contentType)
	}
	return nil
}

func isCacheHit(h http.Header) bool {
	for _, key := range []string{"X-Cache", "CF-Cache-Status"} {
		if strings.HasPrefix(strings.ToUpper(h.Get(key)), "HIT") {
			return true
		}
	}
	return false
}
