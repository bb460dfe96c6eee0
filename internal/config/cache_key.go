package config

import (
	"fmt"
)

type CacheKeyStruct struct {
	prefix string
}

func NewCacheKeyStruct(prefix string) *CacheKeyStruct {
	return &CacheKeyStruct{prefix: prefix}
}

// Snapshot returns the cache key holding the normalized upstream snapshot
func (r *CacheKeyStruct) Snapshot() string {
	return fmt.Sprintf("%s:snapshot", r.prefix)
}

// Generation returns the key holding the generation of the stored snapshot
func (r *CacheKeyStruct) Generation() string {
	return fmt.Sprintf("%s:snapshot:generation", r.prefix)
}

// GenerationCounter returns the key handing out generations to refreshes
func (r *CacheKeyStruct) GenerationCounter() string {
	return fmt.Sprintf("%s:snapshot:generation_counter", r.prefix)
}

// RefreshChannel returns the Redis PubSub channel announcing new snapshots
func (r *CacheKeyStruct) RefreshChannel() string {
	return fmt.Sprintf("%s:snapshot:refreshed", r.prefix)
}

// RateLimitKey returns the counter key for a client's manual refreshes
func (r *CacheKeyStruct) RateLimitKey(clientIP string) string {
	return fmt.Sprintf("%s:ratelimit:refresh:%s", r.prefix, clientIP)
}

var CacheKey = NewCacheKeyStruct("tagihan")
