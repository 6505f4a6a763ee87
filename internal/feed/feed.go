// Package feed fans a single edge stream out to every registered local
// operator — top-k sketches, exponential-histogram sum/variance
// registries, the graph store's own ingest path — concurrently. Grounded
// on original_source/SamSrc/BaseProducer.hpp's consumer-list/parallelFeed
// pattern, generalized from BaseProducer's queue-then-batch-dispatch
// scheme to a direct per-edge fan-out: SimpleFeatures.cpp subscribes
// three independent operators (a top-k sketch plus two exponential-
// histogram registries) to the same ingress stream, so Publish must be
// safe for concurrent registration, not just a single subscriber.
package feed

import "sync"

// Subscriber receives every edge published to a Feed. It must not block
// indefinitely — Publish waits for every subscriber to return before a
// call completes, mirroring parallelFeed's own "consume everything before
// accepting the next batch" contract.
type Subscriber func(edge interface{})

// Feed is a concurrency-safe registry of subscribers fed by a single
// producer.
type Feed struct {
	mu          sync.RWMutex // Protects subscribers during registration and publish
	subscribers []Subscriber
}

// New constructs an empty Feed.
func New() *Feed {
	return &Feed{}
}

// Subscribe registers sub to receive every future published edge.
// Safe to call concurrently with Publish and with other Subscribe calls.
func (f *Feed) Subscribe(sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, sub)
}

// NumSubscribers reports how many subscribers are currently registered.
func (f *Feed) NumSubscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Publish delivers edge to every registered subscriber concurrently,
// then blocks until all of them have returned.
func (f *Feed) Publish(edge interface{}) {
	f.mu.RLock()
	subs := make([]Subscriber, len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(subs))
	for _, sub := range subs {
		sub := sub
		go func() {
			defer wg.Done()
			sub(edge)
		}()
	}
	wg.Wait()
}
