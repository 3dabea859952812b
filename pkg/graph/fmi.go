package graph

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// fmi parse states
const (
	PARSE_NODE_COUNT = iota
	PARSE_EDGE_COUNT = iota
	PARSE_NODES      = iota
	PARSE_EDGES      = iota
)

// The fmi text format lists the node count, the edge count, one line per node
// ("id lon lat [cost]") and one line per forward edge ("from to").
// Lines starting with '#' and empty lines are skipped.

// AsString returns the graph in fmi format. Nodes are sorted by id.
func (g *NetworkGraph) AsString() string {
	var sb strings.Builder

	ids := g.NodeIDs()
	sb.WriteString(fmt.Sprintf("%v\n", len(ids)))
	sb.WriteString(fmt.Sprintf("%v\n", g.EdgeCount()))

	sb.WriteString("#Nodes\n")
	for _, id := range ids {
		n, _ := g.Get(id)
		sb.WriteString(n.ID)
		if n.HasCoordinates {
			sb.WriteString(fmt.Sprintf(" %v %v", formatFloat(n.Coordinates.Lon()), formatFloat(n.Coordinates.Lat())))
			if n.HasCost {
				sb.WriteString(" " + formatFloat(n.Cost))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("#Edges\n")
	for _, id := range ids {
		for _, next := range g.NextNodes(id) {
			sb.WriteString(fmt.Sprintf("%v %v\n", id, next))
		}
	}
	return sb.String()
}

func WriteFmi(g *NetworkGraph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(g.AsString()); err != nil {
		return err
	}
	return writer.Flush()
}

func NewNetworkGraphFromFmiString(fmi string) (*NetworkGraph, error) {
	g := NewNetworkGraph()
	if err := g.LoadFmi(fmi); err != nil {
		return nil, err
	}
	return g, nil
}

func NewNetworkGraphFromFmiFile(filename string) (*NetworkGraph, error) {
	fmi, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewNetworkGraphFromFmiString(string(fmi))
}

// LoadFmi merges the nodes and edges of the fmi document into the graph
func (g *NetworkGraph) LoadFmi(fmi string) error {
	scanner := bufio.NewScanner(strings.NewReader(fmi))

	numNodes, numEdges := 0, 0
	numParsedNodes, numParsedEdges := 0, 0
	patches := make([]NodePatch, 0)

	parseState := PARSE_NODE_COUNT
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}

		switch parseState {
		case PARSE_NODE_COUNT:
			val, err := strconv.Atoi(line)
			if err != nil {
				return fmt.Errorf("line %d: invalid node count: %w", lineNumber, err)
			}
			numNodes = val
			parseState = PARSE_EDGE_COUNT
		case PARSE_EDGE_COUNT:
			val, err := strconv.Atoi(line)
			if err != nil {
				return fmt.Errorf("line %d: invalid edge count: %w", lineNumber, err)
			}
			numEdges = val
			parseState = PARSE_NODES
			if numNodes == 0 {
				parseState = PARSE_EDGES
			}
		case PARSE_NODES:
			patch, err := parseFmiNode(line)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNumber, err)
			}
			patches = append(patches, patch)
			numParsedNodes++
			if numParsedNodes == numNodes {
				parseState = PARSE_EDGES
			}
		case PARSE_EDGES:
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return fmt.Errorf("line %d: edge needs a source and a target, got %q", lineNumber, line)
			}
			patches = append(patches, NodePatch{ID: fields[0], NextNode: fields[1]})
			numParsedEdges++
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if numParsedNodes != numNodes || numParsedEdges != numEdges {
		return fmt.Errorf("invalid parsing result: %d/%d nodes, %d/%d edges", numParsedNodes, numNodes, numParsedEdges, numEdges)
	}

	g.SetNodes(patches)
	return nil
}

func parseFmiNode(line string) (NodePatch, error) {
	fields := strings.Fields(line)
	patch := NodePatch{ID: fields[0]}
	switch len(fields) {
	case 1:
		return patch, nil
	case 3, 4:
		values := make([]float64, len(fields)-1)
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return patch, fmt.Errorf("node %v: %w", fields[0], err)
			}
			values[i] = v
		}
		patch.Coordinates = Coords(values[0], values[1])
		if len(values) == 3 {
			patch.Cost = Float(values[2])
		}
		return patch, nil
	}
	return patch, fmt.Errorf("node line %q needs an id, optional coordinates and an optional cost", line)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
