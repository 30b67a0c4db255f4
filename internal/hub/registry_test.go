package hub

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(r *Registry) map[Conn]int {
	seen := make(map[Conn]int)
	r.ForEach(func(c Conn) { seen[c]++ })
	return seen
}

func TestRegistry_AddRemove(t *testing.T) {
	r := NewRegistry()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}

	assert.True(t, r.Add(a))
	assert.False(t, r.Add(a), "second add of the same connection is a no-op")
	assert.True(t, r.Add(b))
	assert.Equal(t, 2, r.Len())

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a), "removing twice is a no-op")
	assert.False(t, r.Contains(a))
	assert.True(t, r.Contains(b))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ForEachVisitsLiveSetExactlyOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := make([]*mockConn, 20)
	for i := range pool {
		pool[i] = &mockConn{id: fmt.Sprintf("c%d", i)}
	}

	for round := 0; round < 50; round++ {
		r := NewRegistry()
		want := make(map[Conn]bool)

		for step := 0; step < 100; step++ {
			c := pool[rng.Intn(len(pool))]
			if rng.Intn(2) == 0 {
				if !want[c] {
					r.Add(c)
					want[c] = true
				}
			} else {
				r.Remove(c)
				delete(want, c)
			}
		}

		seen := collect(r)
		require.Len(t, seen, len(want), "round %d", round)
		for c, n := range seen {
			assert.True(t, want[c], "round %d: visited removed connection %s", round, c.ID())
			assert.Equal(t, 1, n, "round %d: %s visited more than once", round, c.ID())
		}
	}
}

func TestRegistry_ForEachAllowsMutation(t *testing.T) {
	r := NewRegistry()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	late := &mockConn{id: "late"}
	r.Add(a)
	r.Add(b)

	visited := 0
	r.ForEach(func(c Conn) {
		visited++
		r.Remove(c)
		r.Add(late)
	})

	assert.Equal(t, 2, visited, "traversal covers the snapshot taken at the start")
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Contains(late))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := &mockConn{id: fmt.Sprintf("c%d", i)}
			for j := 0; j < 200; j++ {
				r.Add(c)
				r.ForEach(func(Conn) {})
				r.Remove(c)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
