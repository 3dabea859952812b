// Package rdf maps the triples of a tile onto network graph patches.
package rdf

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/knakk/rdf"
	"github.com/natevvv/osm-tile-routing/pkg/geometry"
	"github.com/natevvv/osm-tile-routing/pkg/graph"
)

const (
	GeoSPARQLAsWKT      = "http://www.opengis.net/ont/geosparql#asWKT"
	WGS84Lat            = "http://www.w3.org/2003/01/geo/wgs84_pos#lat"
	WGS84Long           = "http://www.w3.org/2003/01/geo/wgs84_pos#long"
	ERALength           = "http://data.europa.eu/949/length"
	ERALinkedTo         = "http://data.europa.eu/949/linkedTo"
	ERABidirectionalTo  = "http://data.europa.eu/949/bidirectionallyLinkedTo"
	GeoSPARQLWKTLiteral = "http://www.opengis.net/ont/geosparql#wktLiteral"
)

var ErrInvalidGeometry = geometry.ErrInvalidGeometry

// Vocabulary names the predicates that carry the node attributes and edges.
// An empty predicate is never matched.
type Vocabulary struct {
	Geometry      string
	Latitude      string
	Longitude     string
	Cost          string
	LinkedTo      string
	Bidirectional string
}

// DefaultVocabulary matches the ERA knowledge graph
var DefaultVocabulary = Vocabulary{
	Geometry:      GeoSPARQLAsWKT,
	Latitude:      WGS84Lat,
	Longitude:     WGS84Long,
	Cost:          ERALength,
	LinkedTo:      ERALinkedTo,
	Bidirectional: ERABidirectionalTo,
}

// Patch translates a single triple. ok is false for predicates outside the vocabulary.
func (v Vocabulary) Patch(t rdf.Triple) (patch graph.NodePatch, ok bool, err error) {
	subject := t.Subj.String()
	object := t.Obj.String()
	patch.ID = subject

	switch t.Pred.String() {
	case "":
		return patch, false, nil
	case v.Geometry:
		p, err := geometry.ParseWKTPoint(object)
		if err != nil {
			return patch, false, fmt.Errorf("%v: %w", subject, err)
		}
		patch.Coordinates = &p
	case v.Latitude:
		lat, err := parseFloat(subject, object)
		if err != nil {
			return patch, false, err
		}
		patch.Latitude = &lat
	case v.Longitude:
		lon, err := parseFloat(subject, object)
		if err != nil {
			return patch, false, err
		}
		patch.Longitude = &lon
	case v.Cost:
		cost, err := parseFloat(subject, object)
		if err != nil {
			return patch, false, err
		}
		patch.Cost = &cost
	case v.LinkedTo:
		patch.NextNode = object
	case v.Bidirectional:
		patch.BidirectionalNode = object
	default:
		return patch, false, nil
	}
	return patch, true, nil
}

// Apply decodes an N-Triples document and merges every recognized triple into g.
// It returns the number of applied triples. The graph is only modified if the whole
// document is valid.
func (v Vocabulary) Apply(r io.Reader, g *graph.NetworkGraph) (int, error) {
	dec := rdf.NewTripleDecoder(r, rdf.NTriples)
	patches := make([]graph.NodePatch, 0)
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		patch, ok, err := v.Patch(t)
		if err != nil {
			return 0, err
		}
		if ok {
			patches = append(patches, patch)
		}
	}
	g.SetNodes(patches)
	return len(patches), nil
}

// Triples describes a node with the vocabulary: its geometry, its cost and one triple per
// outgoing edge.
func (v Vocabulary) Triples(n graph.Node) ([]rdf.Triple, error) {
	subj, err := rdf.NewIRI(n.ID)
	if err != nil {
		return nil, err
	}
	triples := make([]rdf.Triple, 0, len(n.NextNodes)+2)
	add := func(predicate string, obj rdf.Object) error {
		if predicate == "" {
			return nil
		}
		pred, err := rdf.NewIRI(predicate)
		if err != nil {
			return err
		}
		triples = append(triples, rdf.Triple{Subj: subj, Pred: pred, Obj: obj})
		return nil
	}

	if n.HasCoordinates {
		wktType, err := rdf.NewIRI(GeoSPARQLWKTLiteral)
		if err != nil {
			return nil, err
		}
		lit := rdf.NewTypedLiteral(geometry.FormatWKTPoint(n.Coordinates), wktType)
		if err := add(v.Geometry, lit); err != nil {
			return nil, err
		}
	}
	if n.HasCost {
		lit, err := rdf.NewLiteral(n.Cost)
		if err != nil {
			return nil, err
		}
		if err := add(v.Cost, lit); err != nil {
			return nil, err
		}
	}
	for _, next := range n.NextNodes {
		obj, err := rdf.NewIRI(next)
		if err != nil {
			return nil, err
		}
		if err := add(v.LinkedTo, obj); err != nil {
			return nil, err
		}
	}
	return triples, nil
}

// Encode writes the nodes as N-Triples
func (v Vocabulary) Encode(w io.Writer, nodes []graph.Node) error {
	enc := rdf.NewTripleEncoder(w, rdf.NTriples)
	for _, n := range nodes {
		triples, err := v.Triples(n)
		if err != nil {
			return err
		}
		if err := enc.EncodeAll(triples); err != nil {
			return err
		}
	}
	return enc.Close()
}

func parseFloat(subject, literal string) (float64, error) {
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, fmt.Errorf("%v: invalid number %q: %w", subject, literal, err)
	}
	return f, nil
}
