package graph

// idSet is a set of node ids which remembers insertion order, so adjacency is iterated the same
// way on every run.
type idSet struct {
	ids   []string
	index map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{index: make(map[string]struct{})}
}

// Add inserts id and reports whether it was not yet part of the set
func (s *idSet) Add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *idSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) Len() int { return len(s.ids) }

// Slice returns a copy of the ids in insertion order
func (s *idSet) Slice() []string {
	ids := make([]string, len(s.ids))
	copy(ids, s.ids)
	return ids
}
