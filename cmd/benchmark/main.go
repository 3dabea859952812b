package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/natevvv/osm-tile-routing/pkg/graph"
	p "github.com/natevvv/osm-tile-routing/pkg/graph/path"
	"github.com/natevvv/osm-tile-routing/pkg/routing"
	"github.com/natevvv/osm-tile-routing/pkg/slice"
)

// target: origin, destination, reference cost, #hops (nodes from source to target)
type target struct {
	origin      string
	destination string
	cost        float64
	hops        int
}

func main() {
	graphFile := flag.String("graph", "", "fmi graph to work with")
	targetFile := flag.String("targets", "targets.txt", "file with the benchmark queries")
	useRandomTargets := flag.Bool("random", false, "Create (new) random targets")
	amountTargets := flag.Int("n", 100, "How many new targets should get created")
	storeTargets := flag.Bool("store", false, "Store targets (when newly generated)")
	algorithm := flag.String("search", "all", "Select the search algorithm (all, dijkstra, astar, nbastar)")
	costName := flag.String("cost", "node", "edge cost (node, distance, unit)")
	heuristicName := flag.String("heuristic", "haversine", "heuristic of astar and nbastar")
	cpuProfile := flag.String("cpu", "", "write cpu profile to file")
	flag.Parse()

	if *graphFile == "" {
		log.Fatal("Graph file missing")
	}
	cost, ok := routing.CostByName(*costName)
	if !ok {
		log.Fatalf("Unknown cost %v", *costName)
	}
	heuristic, ok := routing.HeuristicByName(*heuristicName)
	if !ok {
		log.Fatalf("Unknown heuristic %v", *heuristicName)
	}

	start := time.Now()
	g, err := graph.NewNetworkGraphFromFmiFile(*graphFile)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("[TIME-Import] = %s\n", time.Since(start))

	referenceDijkstra := p.NewDijkstra(p.WithGraph(g), p.WithCost(cost))

	var targets []target
	if *useRandomTargets {
		targets = createTargets(*amountTargets, g, referenceDijkstra)
		if *storeTargets {
			writeTargets(targets, *targetFile)
		}
	} else {
		targets = readTargets(*targetFile)
		if *amountTargets < len(targets) {
			targets = targets[0:*amountTargets]
		}
	}

	algorithms := routing.Navigators
	if *algorithm != "all" {
		if !slice.Contains(routing.Navigators, *algorithm) {
			log.Fatal("Navigator not supported")
		}
		algorithms = []string{*algorithm}
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	for _, name := range algorithms {
		opts := []p.Option{p.WithGraph(g), p.WithCost(cost), p.WithHeuristic(heuristic)}
		var navigator p.PathFinder
		switch name {
		case "dijkstra":
			navigator = p.NewDijkstra(opts...)
		case "astar":
			navigator = p.NewAStar(opts...)
		case "nbastar":
			navigator = p.NewNBAStar(opts...)
		}
		fmt.Printf("### %v\n", name)
		benchmark(navigator, g, targets, referenceDijkstra)
	}
}

func endpoint(g *graph.NetworkGraph, id string) p.Endpoint {
	n, _ := g.Get(id)
	return p.Endpoint{ID: id, Coordinates: n.Coordinates}
}

func readTargets(filename string) []target {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	targets := make([]target, 0)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}
		var t target
		if _, err := fmt.Sscanf(line, "%s %s %g %d", &t.origin, &t.destination, &t.cost, &t.hops); err != nil {
			log.Fatalf("invalid target %q: %v", line, err)
		}
		targets = append(targets, t)
	}
	return targets
}

func createTargets(n int, g *graph.NetworkGraph, referenceDijkstra p.PathFinder) []target {
	targets := make([]target, n)
	seed := rand.NewSource(time.Now().UnixNano())
	rng := rand.New(seed)
	ids := g.NodeIDs()
	// reference algorithm to compute path
	for i := 0; i < n; i++ {
		origin := ids[rng.Intn(len(ids))]
		destination := ids[rng.Intn(len(ids))]
		to := endpoint(g, destination)
		result, err := referenceDijkstra.FindPath(context.Background(), endpoint(g, origin), &to, 0)
		if err != nil {
			log.Fatal(err)
		}
		t := target{origin: origin, destination: destination, cost: -1}
		if result != nil {
			t.cost = result.Metadata.Cost
			t.hops = len(result.Path)
		}
		targets[i] = t
	}
	return targets
}

func writeTargets(targets []target, targetFile string) {
	var sb strings.Builder
	for _, t := range targets {
		sb.WriteString(fmt.Sprintf("%v %v %v %v\n", t.origin, t.destination, t.cost, t.hops))
	}

	file, cErr := os.Create(targetFile)

	if cErr != nil {
		log.Fatal(cErr)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writer.WriteString(sb.String())
	writer.Flush()
}

func pathIDs(result *p.Result) []string {
	if result == nil {
		return nil
	}
	ids := make([]string, len(result.Path))
	for i, n := range result.Path {
		ids[i] = n.ID
	}
	return ids
}

// Run benchmarks on the provided graph and targets
func benchmark(navigator p.PathFinder, g *graph.NetworkGraph, targets []target, referenceDijkstra p.PathFinder) {
	var runtime time.Duration = 0
	completed := 0
	rank := 0
	differentPaths := 0

	invalidLengths := make([]int, 0)
	invalidResults := make([]int, 0)
	invalidHops := make([][3]int, 0)

	showResults := func() {
		if completed == 0 {
			return
		}
		fmt.Printf("Average runtime: %.3fms\n", float64(runtime.Microseconds())/float64(completed)/1000)
		fmt.Printf("Average dijkstra rank: %d\n", rank/completed)
		fmt.Printf("%v/%v paths differ from the reference path (equal cost).\n", differentPaths, completed)

		fmt.Printf("%v/%v invalid Result (source/target).\n", len(invalidResults), completed)
		for i, result := range invalidResults {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid result\n", i, result, targets[result].origin, targets[result].destination)
		}

		fmt.Printf("%v/%v invalid path lengths.\n", len(invalidLengths), completed)
		for i, testcase := range invalidLengths {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid length. Reference: %v\n", i, testcase, targets[testcase].origin, targets[testcase].destination, targets[testcase].cost)
		}

		fmt.Printf("%v/%v invalid hops number.\n", len(invalidHops), completed)
		for i, hops := range invalidHops {
			testcase := hops[0]
			fmt.Printf("%v: Case %v (%v -> %v) has invalid #hops. Has: %v, reference: %v, difference: %v\n", i, testcase, targets[testcase].origin, targets[testcase].destination, hops[1], hops[2], hops[1]-hops[2])
		}
	}

	// catch interrupt to still show already calculated results
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		if _, ok := <-c; ok {
			showResults()
			os.Exit(0)
		}
	}()

	for i, t := range targets {
		to := endpoint(g, t.destination)
		result, err := navigator.FindPath(context.Background(), endpoint(g, t.origin), &to, 0)
		if err != nil {
			log.Fatal(err)
		}
		metadata := navigator.Metadata()

		fmt.Printf("[%3v TIME-Navigate, Dijkstra rank, cost] = %12s, %7d, %v\n", i, metadata.ExecutionTime, metadata.DijkstraRank, metadata.Cost)

		length := -1.0
		if result != nil {
			length = result.Metadata.Cost
			ids := pathIDs(result)
			if ids[0] != t.origin || ids[len(ids)-1] != t.destination {
				invalidResults = append(invalidResults, i)
			}
			if len(ids) != t.hops {
				invalidHops = append(invalidHops, [3]int{i, len(ids), t.hops})
			}
			reference, err := referenceDijkstra.FindPath(context.Background(), endpoint(g, t.origin), &to, 0)
			if err == nil && slice.Compare(ids, pathIDs(reference)) != 0 {
				differentPaths++
			}
		}
		if math.Abs(length-t.cost) > 1e-6 {
			invalidLengths = append(invalidLengths, i)
		}

		runtime += metadata.ExecutionTime
		rank += metadata.DijkstraRank
		completed++
	}
	// normal termination, show results
	showResults()
}
