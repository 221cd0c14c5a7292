package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInsertGetRemove(t *testing.T) {
	reg := NewRegistry()
	c := newTestClient(1)

	reg.Insert(c)

	got, ok := reg.Get(c.ID())
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, reg.Len())

	reg.Remove(c.ID())
	_, ok = reg.Get(c.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryRemoveAbsentIsNoOp(t *testing.T) {
	reg := NewRegistry()
	reg.Remove("never-inserted")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistrySnapshotMatching(t *testing.T) {
	reg := NewRegistry()

	subscriber := newTestClient(1)
	subscriber.AddTopic("general")
	other := newTestClient(1)

	reg.Insert(subscriber)
	reg.Insert(other)

	matched := reg.SnapshotMatching(func(c *Client) bool { return c.HasTopic("general") })
	require.Len(t, matched, 1)
	assert.Same(t, subscriber, matched[0])

	all := reg.SnapshotMatching(func(*Client) bool { return true })
	assert.Len(t, all, 2)
}

// Churn the registry from many goroutines and check that exactly the ids
// that were inserted and never removed survive.
func TestRegistryConcurrentChurn(t *testing.T) {
	const (
		workers          = 8
		clientsPerWorker = 50
	)

	reg := NewRegistry()

	kept := make([][]string, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < clientsPerWorker; i++ {
				c := newTestClient(1)
				reg.Insert(c)
				if i%2 == 0 {
					reg.Remove(c.ID())
				} else {
					kept[w] = append(kept[w], c.ID())
				}
			}
		}(w)
	}

	// Concurrent readers must never observe a torn entry.
	stop := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for _, c := range reg.SnapshotMatching(func(*Client) bool { return true }) {
					if c.ID() == "" {
						t.Error("observed client with empty id")
						return
					}
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()

	want := 0
	for w := range kept {
		want += len(kept[w])
		for _, id := range kept[w] {
			_, ok := reg.Get(id)
			assert.True(t, ok, fmt.Sprintf("id %s should still be present", id))
		}
	}
	assert.Equal(t, want, reg.Len())
}
