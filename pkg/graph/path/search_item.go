package path

import (
	"fmt"

	"github.com/natevvv/osm-tile-routing/pkg/slice"
)

// searchItem is the frontier entry of the unidirectional search
type searchItem struct {
	id       string
	pos      int // position in the pool
	gScore   float64
	fScore   float64
	previous int // pool position of the predecessor, -1 for the origin
	index    int // heap position, -1 if not queued
}

func (item *searchItem) String() string {
	return fmt.Sprintf("%v: %v (g: %v, f: %v)", item.index, item.id, item.gScore, item.fScore)
}

// nbaItem is the frontier entry of the bidirectional search. Both searches share it.
type nbaItem struct {
	id       string
	pos      int
	fGScore  float64 // distance from the origin
	bGScore  float64 // distance to the target
	fFScore  float64
	bFScore  float64
	previous int // pool position of the forward predecessor
	next     int // pool position of the backward predecessor (successor on the path)
	fIndex   int // position in the forward heap
	bIndex   int // position in the backward heap
}

func (item *nbaItem) String() string {
	return fmt.Sprintf("%v (f: %v/%v, b: %v/%v)", item.id, item.fGScore, item.fFScore, item.bGScore, item.bFScore)
}

// gScore returns the distance of the item in the given search direction
func (item *nbaItem) gScore(direction Direction) float64 {
	f, _ := alignWithSearchDirection(direction, item.fGScore, item.bGScore)
	return f
}

func (item *nbaItem) fScore(direction Direction) float64 {
	f, _ := alignWithSearchDirection(direction, item.fFScore, item.bFScore)
	return f
}

// pool owns the entries of one query. Entries link each other by position.
type pool[T any] struct {
	items []T
	ids   map[string]int
}

func newPool[T any]() *pool[T] {
	return &pool[T]{ids: make(map[string]int)}
}

// add stores the item and returns its position
func (p *pool[T]) add(id string, item T) int {
	p.ids[id] = len(p.items)
	p.items = append(p.items, item)
	return len(p.items) - 1
}

func (p *pool[T]) get(id string) (T, bool) {
	pos, ok := p.ids[id]
	if !ok {
		var zero T
		return zero, false
	}
	return p.items[pos], true
}

func (p *pool[T]) at(pos int) T {
	return p.items[pos]
}

// chain follows the links starting at pos and returns the visited positions
func (p *pool[T]) chain(pos int, link func(T) int) []int {
	positions := make([]int, 0)
	for ; pos >= 0; pos = link(p.items[pos]) {
		positions = append(positions, pos)
	}
	return positions
}

// idsOf translates positions into node ids
func (p *pool[T]) idsOf(positions []int, id func(T) string) []string {
	ids := make([]string, len(positions))
	for i, pos := range positions {
		ids[i] = id(p.items[pos])
	}
	return ids
}

// reversed returns the chain from its root to pos
func (p *pool[T]) reversed(pos int, link func(T) int) []int {
	positions := p.chain(pos, link)
	slice.ReverseInPlace(positions)
	return positions
}
