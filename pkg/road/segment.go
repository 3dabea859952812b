package road

import (
	"github.com/natevvv/osm-tile-routing/pkg/geometry"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/slice"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
)

type RoadType int

const (
	Unknown RoadType = iota
	Motorway
	Trunk
	Primary
	Secondary
	Tertiary
)

func (r RoadType) String() string {
	return []string{"Unknown", "Motorway", "Trunk", "Primary", "Secondary", "Tertiary"}[r]
}

// ParseRoadType maps the highway tag of a way. Link roads belong to their class.
func ParseRoadType(highway string) RoadType {
	switch highway {
	case "motorway", "motorway_link":
		return Motorway
	case "trunk", "trunk_link":
		return Trunk
	case "primary", "primary_link":
		return Primary
	case "secondary", "secondary_link":
		return Secondary
	case "tertiary", "tertiary_link":
		return Tertiary
	default:
		return Unknown
	}
}

// Segment is a way with the located nodes it passes, in driving order for one-way roads
type Segment struct {
	ID     osm.WayID
	Type   RoadType
	Nodes  []osm.NodeID
	Points []orb.Point
	Tags   map[string]string
	OneWay bool
}

// NewSegment reads the direction of the way from its tags. A way tagged oneway=-1 is reversed.
func NewSegment(id osm.WayID, roadType RoadType, tags map[string]string) *Segment {
	s := &Segment{ID: id, Type: roadType, Tags: tags}
	switch tags["oneway"] {
	case "yes", "true", "1", "-1":
		s.OneWay = true
	case "no", "false", "0":
		s.OneWay = false
	default:
		s.OneWay = roadType == Motorway || tags["junction"] == "roundabout"
	}
	return s
}

// Add appends a node of the way
func (s *Segment) Add(id osm.NodeID, p orb.Point) {
	s.Nodes = append(s.Nodes, id)
	s.Points = append(s.Points, p)
}

// Finish puts the nodes of a way tagged oneway=-1 in driving order
func (s *Segment) Finish() {
	if s.Tags["oneway"] != "-1" {
		return
	}
	slice.ReverseInPlace(s.Nodes)
	slice.ReverseInPlace(s.Points)
}

// Length in meters
func (s *Segment) Length() float64 {
	return geo.LengthHaversine(orb.LineString(s.Points))
}

// NodeIRI identifies an OSM node below base, e.g. https://example.org/osm/node/42
func NodeIRI(base string, id osm.NodeID) string {
	return base + "/" + id.FeatureID().String()
}

// Patches turns the segment into graph updates. Every node costs the length in meters of the
// piece of road leading to it.
func (s *Segment) Patches(base string) []graph.NodePatch {
	patches := make([]graph.NodePatch, 0, len(s.Nodes))
	for i, id := range s.Nodes {
		p := s.Points[i]
		patch := graph.NodePatch{ID: NodeIRI(base, id), Coordinates: &p}
		if i > 0 {
			patch.Cost = graph.Float(geometry.Haversine(s.Points[i-1], p))
		}
		if i < len(s.Nodes)-1 {
			if s.OneWay {
				patch.NextNode = NodeIRI(base, s.Nodes[i+1])
			} else {
				patch.BidirectionalNode = NodeIRI(base, s.Nodes[i+1])
			}
		}
		patches = append(patches, patch)
	}
	return patches
}

// BuildGraph merges all segments into one graph
func BuildGraph(base string, segments []*Segment) *graph.NetworkGraph {
	g := graph.NewNetworkGraph()
	for _, s := range segments {
		g.SetNodes(s.Patches(base))
	}
	return g
}
