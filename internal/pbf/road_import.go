package pbf

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	"github.com/natevvv/osm-tile-routing/pkg/road"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/qedus/osmpbf"
)

type way struct {
	id      osm.WayID
	typ     road.RoadType
	tags    map[string]string
	nodeIDs []int64
}

// RoadImporter reads the major roads of an OSM PBF extract
type RoadImporter struct {
	filename string
	logger   *slog.Logger
	ways     []way
	roads    []*road.Segment
	nodes    map[int64]orb.Point
}

func NewRoadImporter(filename string, logger *slog.Logger) *RoadImporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoadImporter{
		filename: filename,
		logger:   logger,
		roads:    make([]*road.Segment, 0),
		nodes:    make(map[int64]orb.Point),
	}
}

// Import reads the extract twice: first the road ways, then the locations of their nodes
func (ri *RoadImporter) Import() error {
	if err := ri.collectWays(); err != nil {
		return err
	}
	if err := ri.collectNodes(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	roadsChan := make(chan *road.Segment, 1000)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for segment := range roadsChan {
			ri.roads = append(ri.roads, segment)
		}
	}()

	skipped := 0
	for _, w := range ri.ways {
		segment := road.NewSegment(w.id, w.typ, w.tags)
		for _, nodeID := range w.nodeIDs {
			if point, ok := ri.nodes[nodeID]; ok {
				segment.Add(osm.NodeID(nodeID), point)
			}
		}
		if len(segment.Nodes) < 2 {
			skipped++
			continue
		}
		segment.Finish()
		roadsChan <- segment
	}
	close(roadsChan)
	wg.Wait()

	ri.logger.Info("roads imported", "file", ri.filename, "roads", len(ri.roads), "nodes", len(ri.nodes), "skipped", skipped)
	ri.ways = nil
	return nil
}

func (ri *RoadImporter) Roads() []*road.Segment {
	return ri.roads
}

// Graph builds the network of the imported roads. Nodes are named below base.
func (ri *RoadImporter) Graph(base string) *graph.NetworkGraph {
	return road.BuildGraph(base, ri.roads)
}

func (ri *RoadImporter) collectWays() error {
	return ri.decode(func(v interface{}) {
		w, ok := v.(*osmpbf.Way)
		if !ok {
			return
		}
		highway, ok := w.Tags["highway"]
		if !ok {
			return
		}
		roadType := road.ParseRoadType(highway)
		if roadType == road.Unknown {
			return
		}
		ri.ways = append(ri.ways, way{id: osm.WayID(w.ID), typ: roadType, tags: w.Tags, nodeIDs: w.NodeIDs})
		for _, id := range w.NodeIDs {
			ri.nodes[id] = orb.Point{}
		}
	})
}

// collectNodes locates the nodes referenced by the collected ways
func (ri *RoadImporter) collectNodes() error {
	needed := ri.nodes
	ri.nodes = make(map[int64]orb.Point, len(needed))
	return ri.decode(func(v interface{}) {
		n, ok := v.(*osmpbf.Node)
		if !ok {
			return
		}
		if _, ok := needed[n.ID]; ok {
			ri.nodes[n.ID] = orb.Point{n.Lon, n.Lat}
		}
	})
}

func (ri *RoadImporter) decode(visit func(v interface{})) error {
	file, err := os.Open(ri.filename)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	err = decoder.Start(runtime.GOMAXPROCS(-1))
	if err != nil {
		return err
	}

	for {
		v, err := decoder.Decode()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		visit(v)
	}
}
