package middleware

import "github.com/gin-gonic/gin"

const (
	cacheHitKey = "cache_hit"
	// CacheHeader reports whether a response was served from the schedule cache.
	CacheHeader = "X-Cache"
)

// SetCacheHit records cache hit information for the current response. Call before writing the body.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
	if hit {
		c.Header(CacheHeader, "HIT")
		return
	}
	c.Header(CacheHeader, "MISS")
}

// CacheHit reports what SetCacheHit recorded, if anything.
func CacheHit(c *gin.Context) (hit, recorded bool) {
	value, exists := c.Get(cacheHitKey)
	if !exists {
		return false, false
	}
	hit, ok := value.(bool)
	return hit, ok
}
