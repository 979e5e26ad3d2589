package accumulator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_AccessDefaultsToZero(t *testing.T) {
	m := New(4)
	m.Access(7, func(score *float64) {
		assert.Equal(t, 0.0, *score)
		*score += 1.5
	})
	m.Access(7, func(score *float64) { *score += 1 })
	assert.Equal(t, map[int]float64{7: 2.5}, m.Snapshot())
}

func TestMap_Erase(t *testing.T) {
	m := New(2)
	m.Add(1, 1)
	m.Add(3, 1)

	assert.True(t, m.Erase(1))
	assert.False(t, m.Erase(1))
	assert.False(t, m.Erase(99))
	assert.Equal(t, map[int]float64{3: 1}, m.Snapshot())
	assert.Equal(t, 1, m.Len())
}

func TestMap_DefaultBuckets(t *testing.T) {
	assert.Equal(t, DefaultBuckets, New(0).Buckets())
	assert.Equal(t, 3, New(3).Buckets())
}

func TestMap_ConcurrentUpdates(t *testing.T) {
	updates := map[string]func(m *Map, id int){
		"add": func(m *Map, id int) { m.Add(id, 1) },
		"access": func(m *Map, id int) {
			m.Access(id, func(score *float64) { *score += 1 })
		},
	}
	for name, update := range updates {
		t.Run(name, func(t *testing.T) {
			m := New(8)
			const workers = 16
			const perWorker = 1000

			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						update(m, i%50)
					}
				}()
			}
			wg.Wait()

			snap := m.Snapshot()
			assert.Len(t, snap, 50)
			for id, score := range snap {
				assert.Equal(t, float64(workers*perWorker/50), score, "id %d", id)
			}
		})
	}
}
