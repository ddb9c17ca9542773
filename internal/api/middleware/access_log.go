package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fisker/nexforms-backend/pkg/logger"
)

// OperationLogMiddleware 操作日志中间件
// 只记录写操作（POST/PUT/PATCH/DELETE），读请求量太大不落日志
func OperationLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		if c.Request.Method == "GET" {
			return
		}

		username := ""
		if v, exists := c.Get("username"); exists {
			if name, ok := v.(string); ok {
				username = name
			}
		}

		logger.Sugar.Infow("operation",
			"username", username,
			"ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"cost_ms", time.Since(startTime).Milliseconds(),
			"user_agent", c.Request.UserAgent(),
		)
	}
}
