// Package accumulator provides a bucketed map from document id to an
// accumulating relevance score. Each bucket has its own lock, so workers
// scoring different words contend only when they touch the same bucket.
package accumulator

import "sync"

// DefaultBuckets is the bucket count used when none is configured.
// Measured throughput keeps improving up to roughly this size; below 32
// buckets lock contention dominates.
const DefaultBuckets = 128

type bucket struct {
	mu     sync.Mutex
	scores map[int]float64
}

// Map is a fixed-size set of independently locked buckets.
type Map struct {
	buckets []bucket
}

// New creates a Map with n buckets, or DefaultBuckets when n <= 0.
func New(n int) *Map {
	if n <= 0 {
		n = DefaultBuckets
	}
	m := &Map{buckets: make([]bucket, n)}
	for i := range m.buckets {
		m.buckets[i].scores = make(map[int]float64)
	}
	return m
}

func (m *Map) bucketFor(id int) *bucket {
	return &m.buckets[uint64(id)%uint64(len(m.buckets))]
}

// Access runs fn with a pointer to the score of id while holding the owning
// bucket's lock. The score starts at zero on first access. The pointer must
// not escape fn.
func (m *Map) Access(id int, fn func(score *float64)) {
	b := m.bucketFor(id)
	b.mu.Lock()
	defer b.mu.Unlock()
	score := b.scores[id]
	fn(&score)
	b.scores[id] = score
}

// Add increments the score of id by delta. It is Access with a fixed
// callback.
func (m *Map) Add(id int, delta float64) {
	b := m.bucketFor(id)
	b.mu.Lock()
	b.scores[id] += delta
	b.mu.Unlock()
}

// Erase removes id and reports whether it was present.
func (m *Map) Erase(id int) bool {
	b := m.bucketFor(id)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.scores[id]; !ok {
		return false
	}
	delete(b.scores, id)
	return true
}

// Snapshot merges all buckets into one map, locking a single bucket at a
// time. It is meant to be called once all accumulation has joined.
func (m *Map) Snapshot() map[int]float64 {
	out := make(map[int]float64)
	for i := range m.buckets {
		b := &m.buckets[i]
		b.mu.Lock()
		for id, score := range b.scores {
			out[id] = score
		}
		b.mu.Unlock()
	}
	return out
}

// Len returns the number of ids across all buckets.
func (m *Map) Len() int {
	n := 0
	for i := range m.buckets {
		b := &m.buckets[i]
		b.mu.Lock()
		n += len(b.scores)
		b.mu.Unlock()
	}
	return n
}

// Buckets returns the bucket count.
func (m *Map) Buckets() int {
	return len(m.buckets)
}
