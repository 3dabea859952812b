package slice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseInPlace(t *testing.T) {
	s := []string{"A", "B", "C", "D"}
	ReverseInPlace(s)
	assert.Equal(t, []string{"D", "C", "B", "A"}, s)

	odd := []int{1, 2, 3}
	ReverseInPlace(odd)
	assert.Equal(t, []int{3, 2, 1}, odd)

	ReverseInPlace([]int{})
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"dijkstra", "astar"}, "astar"))
	assert.False(t, Contains([]string{"dijkstra", "astar"}, "nbastar"))
	assert.False(t, Contains(nil, "astar"))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare([]string{"A", "C", "E"}, []string{"A", "C", "E"}))
	assert.Equal(t, 1, Compare([]string{"A", "C", "E"}, []string{"A", "D", "E"}))
	assert.Equal(t, -1, Compare([]string{"A", "C", "E"}, []string{"A", "B", "D", "E"}))
}
