// Package cache provides a size-bounded, thread-safe LRU cache whose entries
// also expire after a fixed TTL.
//
//	c := cache.NewLRU[string, Record](10_000, time.Hour)
//	c.Add(id, rec)
//	if rec, ok := c.Get(id); ok {
//		// hit
//	}
package cache
