// SPDX-License-Identifier: MIT

package openapi_server

type RouteResult struct {
	Found    bool          `json:"found"`
	Path     []PathNode    `json:"path"`
	Metadata RouteMetadata `json:"metadata"`
}

type PathNode struct {
	ID   string  `json:"id"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
	Cost float64 `json:"cost"`
}

type RouteMetadata struct {
	Algorithm     string  `json:"algorithm"`
	RequestCount  int     `json:"requestCount"`
	ByteCount     int     `json:"byteCount"`
	CacheHits     int     `json:"cacheHits"`
	DijkstraRank  int     `json:"dijkstraRank"`
	ExecutionTime int64   `json:"executionTime"` // milliseconds
	Cost          float64 `json:"cost"`
}
