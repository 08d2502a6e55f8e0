package cache

import "time"

// instrumentedCache records hit, miss and latency metrics for a group. Evictions are
// counted by the OnEvict wrapper installed in New.
type instrumentedCache struct {
	inner Cache
	group string
}

func newInstrumentedCache(inner Cache, group string, capacity int) *instrumentedCache {
	trackOccupancy(group, inner.Len, capacity)
	return &instrumentedCache{inner: inner, group: group}
}

func (c *instrumentedCache) observe(operation string, start time.Time) {
	OperationDuration.WithLabelValues(c.group, operation).Observe(time.Since(start).Seconds())
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	defer c.observe("get", time.Now())
	value, ok := c.inner.Get(key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return value, ok
}

func (c *instrumentedCache) Set(key string, value []byte) {
	defer c.observe("set", time.Now())
	c.inner.Set(key, value)
}

func (c *instrumentedCache) Delete(key string) {
	defer c.observe("delete", time.Now())
	c.inner.Delete(key)
}

func (c *instrumentedCache) Len() int {
	return c.inner.Len()
}

func (c *instrumentedCache) Close() error {
	untrackOccupancy(c.group)
	return c.inner.Close()
}
