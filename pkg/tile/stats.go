package tile

import "sync/atomic"

// Stats accumulates the tile traffic of one query. The zero value is ready to use and it can be
// shared by the concurrent endpoint fetches of a query. A nil *Stats discards everything.
type Stats struct {
	requests  atomic.Int64
	bytes     atomic.Int64
	cacheHits atomic.Int64
}

func (s *Stats) addRequest(bytes int, cacheHit bool) {
	if s == nil {
		return
	}
	s.requests.Add(1)
	s.bytes.Add(int64(bytes))
	if cacheHit {
		s.cacheHits.Add(1)
	}
}

func (s *Stats) RequestCount() int {
	if s == nil {
		return 0
	}
	return int(s.requests.Load())
}

func (s *Stats) ByteCount() int {
	if s == nil {
		return 0
	}
	return int(s.bytes.Load())
}

// CacheHits counts the responses the tile backend reported as served from its own cache
func (s *Stats) CacheHits() int {
	if s == nil {
		return 0
	}
	return int(s.cacheHits.Load())
}
