package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory ... In-process cache, used for external service auth tokens
type Memory struct {
	cache *gocache.Cache
}

// Initialize ...
func Initialize(expiry time.Duration, purgeInterval time.Duration) *Memory {
	newCache := gocache.New(expiry, purgeInterval)
	memory := Memory{
		cache: newCache,
	}
	return &memory
}

// Set ...
func (memory *Memory) Set(key string, value interface{}, expiry bool) {
	if expiry {
		memory.cache.Set(key, value, gocache.DefaultExpiration)
	} else {
		memory.cache.Set(key, value, gocache.NoExpiration)
	}
}

// Get ...
func (memory *Memory) Get(key string) interface{} {
	cacheValue, _ := memory.cache.Get(key)
	return cacheValue
}
