// Package store provides one-shot claims on voting cards backed by a Bloom filter and an LRU cache.
package store

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ClaimStore hands out at most one claim per key. Claims are kept for the most
// recent maxClaims keys; older ones are evicted and may be claimed again.
type ClaimStore struct {
	claims                 map[string]struct{}
	bloom                  *bloom.BloomFilter
	lru                    *lru.Cache[string, struct{}]
	mutex                  sync.Mutex
	maxClaims              int
	bloomFalsePositiveRate float64
	insertsSinceRebuild    int
}

// NewClaimStore creates a claim store with the given capacity and Bloom filter false positive rate.
func NewClaimStore(maxClaims int, bloomFalsePositiveRate float64) (*ClaimStore, error) {
	if maxClaims <= 0 {
		return nil, fmt.Errorf("maxClaims must be positive, got %d", maxClaims)
	}

	cs := &ClaimStore{
		claims:                 make(map[string]struct{}),
		maxClaims:              maxClaims,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}

	cache, err := lru.NewWithEvict[string, struct{}](maxClaims, func(key string, _ struct{}) {
		delete(cs.claims, key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	cs.lru = cache
	cs.bloom = bloom.NewWithEstimates(uint(maxClaims), bloomFalsePositiveRate)

	return cs, nil
}

// TryClaim claims key. It returns false if key is already claimed.
func (cs *ClaimStore) TryClaim(key string) bool {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if cs.has(key) {
		return false
	}

	cs.claims[key] = struct{}{}
	cs.bloom.AddString(key)
	cs.lru.Add(key, struct{}{})

	cs.insertsSinceRebuild++
	if cs.insertsSinceRebuild > 2*cs.maxClaims {
		cs.rebuildBloom()
	}

	return true
}

// Release gives up the claim on key so it can be claimed again.
func (cs *ClaimStore) Release(key string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if _, exists := cs.claims[key]; !exists {
		return
	}

	// the Bloom filter keeps the key; the map stays authoritative
	cs.lru.Remove(key)
	delete(cs.claims, key)
}

func (cs *ClaimStore) has(key string) bool {
	if !cs.bloom.TestString(key) {
		return false
	}
	_, exists := cs.claims[key]
	return exists
}

// rebuildBloom drops released and evicted keys from the Bloom filter.
func (cs *ClaimStore) rebuildBloom() {
	cs.bloom = bloom.NewWithEstimates(uint(cs.maxClaims), cs.bloomFalsePositiveRate)
	for key := range cs.claims {
		cs.bloom.AddString(key)
	}
	cs.insertsSinceRebuild = 0
}
