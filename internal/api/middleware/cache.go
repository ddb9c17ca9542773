package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/pkg/logger"
	"github.com/fisker/nexforms-backend/pkg/redis"
)

const cacheKeyPrefix = "nexforms:cache:"

// bodyCaptureWriter 捕获响应体用于写入缓存
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// CacheResponse 只读接口的 Redis 响应缓存
// 下拉数据（表单类型/字段类型/数据类型）变更频率极低，短 TTL 缓存即可。
// Redis 未启用时直接放行，不影响功能
func CacheResponse(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || !redis.IsEnabled() {
			c.Next()
			return
		}

		key := cacheKeyPrefix + c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			key += "?" + q
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if cached, err := redis.Client.Get(ctx, key).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if c.Writer.Status() == http.StatusOK && writer.body.Len() > 0 {
			if err := redis.Client.Set(ctx, key, writer.body.Bytes(), ttl).Err(); err != nil {
				logger.Warnf("cache set failed for %s: %v", key, err)
			}
		}
	}
}

// InvalidateCache 按前缀清理缓存，目录数据变更后调用
func InvalidateCache(pathPrefix string) {
	if !redis.IsEnabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	iter := redis.Client.Scan(ctx, 0, cacheKeyPrefix+pathPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		redis.Client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warnf("cache invalidation scan failed for %s: %v", pathPrefix, err)
	}
}
