package shortenurlhandlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/config"
	"github.com/aseptimu/bijective-shortener/internal/app/service"
	"github.com/aseptimu/bijective-shortener/internal/app/utils"
)

// URLGetter предоставляет получение исходного URL по токену.
type URLGetter interface {
	GetOriginalURL(ctx context.Context, token string) (string, error)
}

// GetURLHandler обрабатывает перенаправление на исходный URL и его выдачу в JSON.
type GetURLHandler struct {
	cfg     *config.ConfigType
	service URLGetter
	logger  *zap.SugaredLogger
}

// NewGetURLHandler создаёт новый экземпляр GetURLHandler.
func NewGetURLHandler(cfg *config.ConfigType, service URLGetter, logger *zap.SugaredLogger) *GetURLHandler {
	return &GetURLHandler{cfg: cfg, service: service, logger: logger}
}

func (h *GetURLHandler) resolve(c *gin.Context) (string, bool) {
	originalURL, err := h.service.GetOriginalURL(c.Request.Context(), c.Param("token"))
	switch {
	case err == nil:
		return originalURL, true
	case errors.Is(err, service.ErrURLNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Errorw("Failed to resolve token", "token", c.Param("token"), "error", err,
			"request_id", c.GetString(utils.RequestIDKey))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve URL"})
	}
	return "", false
}

// GetURL обрабатывает GET /r/:token и перенаправляет клиента на исходный URL.
func (h *GetURLHandler) GetURL(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	originalURL, ok := h.resolve(c)
	if !ok {
		return
	}

	c.Header("Location", originalURL)
	c.Header("Content-Type", "text/plain")
	c.String(http.StatusTemporaryRedirect, originalURL)
}

// ExpandURL обрабатывает GET /api/expand/:token и возвращает {"url": "..."}.
func (h *GetURLHandler) ExpandURL(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	originalURL, ok := h.resolve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": originalURL})
}
