// Package geometry holds the coordinate helpers shared by the graph, the tile layer and the path
// finders. Coordinates are orb.Point values and therefore ordered (longitude, latitude).
package geometry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

// MakePoint creates a point from its longitude and latitude
func MakePoint(lon, lat float64) orb.Point {
	return orb.Point{lon, lat}
}

// Haversine returns the great circle distance between a and b in meters.
func Haversine(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b)
}

// Euclidean returns the planar distance between a and b in coordinate units.
func Euclidean(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// ParseWKTPoint parses a WKT point literal. GeoSPARQL literals may start with a CRS IRI
// ("<http://www.opengis.net/def/crs/OGC/1.3/CRS84> POINT(4.3 50.8)"), which is skipped.
func ParseWKTPoint(literal string) (orb.Point, error) {
	s := strings.TrimSpace(literal)
	if strings.HasPrefix(s, "<") {
		end := strings.Index(s, ">")
		if end < 0 {
			return orb.Point{}, fmt.Errorf("%w: unterminated CRS in %q", ErrInvalidGeometry, literal)
		}
		s = strings.TrimSpace(s[end+1:])
	}

	g, err := wkt.Unmarshal(s)
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrInvalidGeometry, literal, err)
	}
	switch v := g.(type) {
	case orb.Point:
		return v, nil
	case orb.MultiPoint:
		if len(v) == 1 {
			return v[0], nil
		}
	}
	return orb.Point{}, fmt.Errorf("%w: %q is a %s, not a point", ErrInvalidGeometry, literal, g.GeoJSONType())
}

// FormatWKTPoint is the inverse of ParseWKTPoint (without CRS).
func FormatWKTPoint(p orb.Point) string {
	return wkt.MarshalString(p)
}
