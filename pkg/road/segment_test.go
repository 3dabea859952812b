package road

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://example.org/osm"

func newTestSegment(tags map[string]string) *Segment {
	s := NewSegment(7, ParseRoadType(tags["highway"]), tags)
	s.Add(1, orb.Point{4.35, 50.85})
	s.Add(2, orb.Point{4.36, 50.85})
	s.Add(3, orb.Point{4.37, 50.86})
	s.Finish()
	return s
}

func TestParseRoadType(t *testing.T) {
	assert.Equal(t, Motorway, ParseRoadType("motorway_link"))
	assert.Equal(t, Tertiary, ParseRoadType("tertiary"))
	assert.Equal(t, Unknown, ParseRoadType("footway"))
	assert.Equal(t, "Primary", Primary.String())
}

func TestOneWay(t *testing.T) {
	cases := map[string]struct {
		tags   map[string]string
		oneWay bool
	}{
		"two way":    {map[string]string{"highway": "primary"}, false},
		"tagged":     {map[string]string{"highway": "primary", "oneway": "yes"}, true},
		"motorway":   {map[string]string{"highway": "motorway"}, true},
		"roundabout": {map[string]string{"highway": "secondary", "junction": "roundabout"}, true},
		"override":   {map[string]string{"highway": "motorway", "oneway": "no"}, false},
		"reversed":   {map[string]string{"highway": "trunk", "oneway": "-1"}, true},
	}
	for name, c := range cases {
		assert.Equal(t, c.oneWay, newTestSegment(c.tags).OneWay, name)
	}

	reversed := newTestSegment(map[string]string{"highway": "trunk", "oneway": "-1"})
	assert.Equal(t, []osm.NodeID{3, 2, 1}, reversed.Nodes)
	assert.Equal(t, orb.Point{4.37, 50.86}, reversed.Points[0])
}

func TestNodeIRI(t *testing.T) {
	assert.Equal(t, "https://example.org/osm/node/42", NodeIRI(base, 42))
}

func TestBuildGraph(t *testing.T) {
	oneWay := newTestSegment(map[string]string{"highway": "primary", "oneway": "yes"})
	g := BuildGraph(base, []*Segment{oneWay})
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	first, ok := g.Get(NodeIRI(base, 1))
	require.True(t, ok)
	assert.Equal(t, []string{NodeIRI(base, 2)}, first.NextNodes)
	assert.Empty(t, first.PrevNodes)
	assert.False(t, first.HasCost, "nothing leads to the first node")

	second, _ := g.Get(NodeIRI(base, 2))
	assert.True(t, second.HasCoordinates)
	assert.InDelta(t, 703, second.Cost, 5, "0.01 degrees of longitude at 50.85N")

	twoWay := newTestSegment(map[string]string{"highway": "primary"})
	g = BuildGraph(base, []*Segment{twoWay})
	assert.Equal(t, 4, g.EdgeCount())
	second, _ = g.Get(NodeIRI(base, 2))
	assert.ElementsMatch(t, []string{NodeIRI(base, 1), NodeIRI(base, 3)}, second.NextNodes)
	assert.Greater(t, twoWay.Length(), second.Cost)
}
