package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// Keys written into the envelope meta.
const (
	MetaCacheHit       = "cache_hit"
	MetaProcessingTime = "processing_time_ms"
	MetaCatalogVersion = "catalog_version"
)

// WithResponseMeta gives every request an empty meta map that handlers fill before responding.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta stores one value in the response meta of the request.
func SetMeta(c *gin.Context, key string, value interface{}) {
	requestMeta(c)[key] = value
}

// SetCacheHit records whether the payload came from Redis.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, MetaCacheHit, hit)
}

// SetProcessingTime records the milliseconds elapsed since start.
func SetProcessingTime(c *gin.Context, start time.Time) {
	SetMeta(c, MetaProcessingTime, time.Since(start).Milliseconds())
}

// ExtractMeta returns the collected meta, or nil when the handler recorded nothing.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, _ := c.Get(responseMetaKey)
	meta, _ := raw.(map[string]interface{})
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func requestMeta(c *gin.Context) map[string]interface{} {
	if raw, ok := c.Get(responseMetaKey); ok {
		if meta, ok := raw.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := map[string]interface{}{}
	c.Set(responseMetaKey, meta)
	return meta
}
