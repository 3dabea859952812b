package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWKTPoint(t *testing.T) {
	cases := []struct {
		literal  string
		lon, lat float64
	}{
		{"POINT(4.35 50.85)", 4.35, 50.85},
		{"POINT (4.35 50.85)", 4.35, 50.85},
		{"<http://www.opengis.net/def/crs/OGC/1.3/CRS84> POINT(6 1)", 6, 1},
		{"  POINT(-3.7 40.4)  ", -3.7, 40.4},
	}
	for _, c := range cases {
		p, err := ParseWKTPoint(c.literal)
		require.NoError(t, err, c.literal)
		assert.Equal(t, c.lon, p.Lon())
		assert.Equal(t, c.lat, p.Lat())
	}
}

func TestParseWKTPointRejectsOtherGeometries(t *testing.T) {
	for _, literal := range []string{"LINESTRING(0 0, 1 1)", "not wkt", "<http://crs POINT(1 1)"} {
		_, err := ParseWKTPoint(literal)
		assert.ErrorIs(t, err, ErrInvalidGeometry, literal)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	p := MakePoint(9, 1)
	parsed, err := ParseWKTPoint(FormatWKTPoint(p))
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestDistances(t *testing.T) {
	a := MakePoint(1, 1)
	b := MakePoint(9, 1)
	assert.InDelta(t, 8.0, Euclidean(a, b), 1e-9)
	// 8 degrees of longitude close to the equator are roughly 890km
	assert.InDelta(t, 890_000, Haversine(a, b), 5_000)
	assert.Zero(t, Haversine(a, a))
}
