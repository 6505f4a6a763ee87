package feed

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	f := New()

	var mu sync.Mutex
	var received []int

	for i := 0; i < 3; i++ {
		i := i
		f.Subscribe(func(e interface{}) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, i)
		})
	}

	f.Publish("edge-1")

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 3)
}

func TestPublishWithNoSubscribersIsANoop(t *testing.T) {
	f := New()
	assert.NotPanics(t, func() { f.Publish("edge-1") })
}

func TestConcurrentSubscribeDuringPublish(t *testing.T) {
	f := New()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Subscribe(func(e interface{}) {})
		}()
	}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Publish("edge")
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, f.NumSubscribers())
}
