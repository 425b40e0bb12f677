// Package utils содержит вспомогательные функции для HTTP-слоя.
package utils

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey - ключ gin.Context, под которым middleware кладёт идентификатор запроса.
const RequestIDKey = "requestID"

func LogRequest(c *gin.Context, logger *zap.SugaredLogger) {
	logger.Debugw("Endpoint called",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"remote_addr", c.ClientIP(),
		"request_id", c.GetString(RequestIDKey),
	)
}
