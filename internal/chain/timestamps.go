package chain

import "sync"

const timestampCacheSize = 4096

// timestampCache maps block numbers to header times. Fetches walk forward
// through block ranges, so a full cache is dropped whole instead of evicting.
type timestampCache struct {
	mu    sync.RWMutex
	limit int
	byNum map[uint64]uint64
}

func newTimestampCache(limit int) *timestampCache {
	return &timestampCache{limit: limit, byNum: make(map[uint64]uint64)}
}

func (c *timestampCache) get(number uint64) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ts, ok := c.byNum[number]
	return ts, ok
}

func (c *timestampCache) put(number, ts uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.byNum) >= c.limit {
		c.byNum = make(map[uint64]uint64, c.limit)
	}
	c.byNum[number] = ts
}
