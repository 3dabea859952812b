package tile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("tilepath.tile")

var (
	tileRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tilepath_tile_requests_total",
		Help: "Tile requests sent to the tile interface, by outcome",
	}, []string{"status"})

	tileBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilepath_tile_bytes_total",
		Help: "Bytes received from the tile interface",
	})

	tileCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tilepath_tile_cache_hits_total",
		Help: "Tile responses served from the cache of the tile interface",
	})
)
