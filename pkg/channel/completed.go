package channel

import (
	"strconv"
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// completedSet is the "bounded history set" the Pending Request Table
// invariant requires: a messageId is pending, completed, or
// unknown. Once a request's terminal reply has been delivered (or it was
// force-rejected), its id moves here so a stray late reply for the same
// id is recognized as "arrived-after-cancel" and silently ignored instead
// of raising a ProtocolError.
//
// Membership is checked in two tiers, both under the set's mutex: a
// bloom.BloomFilter gives an O(1) "definitely not completed" fast path; an exact
// lru.Cache backs every "maybe" the filter reports, since a false
// positive here would wrongly swallow a genuine ProtocolError.
type completedSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	exact  *lru.Cache[uint64, struct{}]
}

func newCompletedSet(capacity int) *completedSet {
	if capacity <= 0 {
		capacity = 4096
	}
	exact, err := lru.New[uint64, struct{}](capacity)
	if err != nil {
		// Only returns an error for a non-positive size, guarded above.
		panic(err)
	}
	return &completedSet{
		filter: bloom.NewWithEstimates(uint(capacity), 0.01),
		exact:  exact,
	}
}

func (c *completedSet) add(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Add(idBytes(id))
	c.exact.Add(id, struct{}{})
}

// has reports whether id has already been completed (or force-rejected).
func (c *completedSet) has(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filter.Test(idBytes(id)) {
		return false
	}
	_, ok := c.exact.Get(id)
	return ok
}

func idBytes(id uint64) []byte {
	return []byte(strconv.FormatUint(id, 36))
}
