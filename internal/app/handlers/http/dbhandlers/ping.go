// Package dbhandlers содержит HTTP-хендлеры для проверки доступности хранилища.
package dbhandlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger описывает интерфейс, который умеет «пинговать» хранилище.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingHandler обрабатывает HTTP-запросы /ping, проверяя Pinger.
type PingHandler struct {
	db Pinger
}

// NewPingHandler создаёт новый PingHandler с переданным Pinger.
func NewPingHandler(db Pinger) *PingHandler {
	return &PingHandler{db}
}

// Ping обрабатывает GET /ping.
// Если хранилище не задано - 503, при ошибке проверки - 500, иначе 200 OK.
func (h *PingHandler) Ping(c *gin.Context) {
	if h.db == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is not configured"})
		return
	}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}
