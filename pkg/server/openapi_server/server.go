package openapi_server

import (
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"
	"github.com/natevvv/osm-tile-routing/pkg/tile"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TileIndexName is the file name of the GeoJSON tile index inside a tile directory
const TileIndexName = "tile-index"

// NewServer wires the api routes, the Prometheus metrics and, if tilesDir is set, the static
// tiles below /tiles/.
func NewServer(s DefaultApiServicer, tilesDir string) *mux.Router {
	router := NewRouter(NewDefaultApiController(s))
	router.Methods(http.MethodGet).Path("/metrics").Name("Metrics").Handler(promhttp.Handler())
	if tilesDir != "" {
		router.PathPrefix("/tiles/").Name("Tiles").Handler(Logger(http.StripPrefix("/tiles", TileHandler(tilesDir)), "Tiles"))
	}
	return router
}

// TileHandler serves the tiles of dir (z/x/y) as N-Triples and the tile index as GeoJSON
func TileHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Base(r.URL.Path) == TileIndexName {
			w.Header().Set("Content-Type", "application/geo+json")
		} else if !strings.HasSuffix(r.URL.Path, "/") {
			w.Header().Set("Content-Type", tile.ContentTypeNTriples)
		}
		files.ServeHTTP(w, r)
	})
}
