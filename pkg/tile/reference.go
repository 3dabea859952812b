// Package tile keeps track of the spatial tiles merged into a network graph and fetches the
// missing ones from a tile interface.
package tile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// deepest zoom level of the slippy map scheme
const maxZoom = 30

// Reference identifies a tile as "{zoom}/{x}/{y}". It is the cache key and the URL path of the tile.
type Reference string

func ReferenceOf(t maptile.Tile) Reference {
	return Reference(fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y))
}

// At returns the reference of the slippy map tile at the given zoom that contains p
func At(p orb.Point, zoom int) Reference {
	return ReferenceOf(maptile.At(p, maptile.Zoom(zoom)))
}

func ParseReference(s string) (Reference, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 3 {
		return "", fmt.Errorf("tile reference %q: expected zoom/x/y", s)
	}
	values := make([]uint64, 3)
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return "", fmt.Errorf("tile reference %q: %w", s, err)
		}
		values[i] = v
	}
	if values[0] > maxZoom || values[1] >= 1<<values[0] || values[2] >= 1<<values[0] {
		return "", fmt.Errorf("tile reference %q: tile outside of zoom %d", s, values[0])
	}
	return ReferenceOf(maptile.New(uint32(values[1]), uint32(values[2]), maptile.Zoom(values[0]))), nil
}

// Tile returns the maptile of a reference created by ReferenceOf, At or ParseReference
func (r Reference) Tile() maptile.Tile {
	var z, x, y uint32
	fmt.Sscanf(string(r), "%d/%d/%d", &z, &x, &y)
	return maptile.New(x, y, maptile.Zoom(z))
}

func (r Reference) String() string {
	return string(r)
}
