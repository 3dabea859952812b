package path

// NewDijkstra creates an AStar search which ignores any configured heuristic
func NewDijkstra(opts ...Option) *AStar {
	a := NewAStar(opts...)
	a.heuristic = ZeroHeuristic
	return a
}
