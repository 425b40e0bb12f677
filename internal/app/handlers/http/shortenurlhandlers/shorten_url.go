// Package shortenurlhandlers содержит HTTP-хендлеры для операций с короткими URL.
package shortenurlhandlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/config"
	"github.com/aseptimu/bijective-shortener/internal/app/service"
	"github.com/aseptimu/bijective-shortener/internal/app/utils"
)

// ShortenHandler обрабатывает создание коротких ссылок
// в текстовом и JSON-форматах, а также batch-режим.
type ShortenHandler struct {
	cfg     *config.ConfigType
	Service service.URLShortener
	logger  *zap.SugaredLogger
}

// NewShortenHandler создаёт новый ShortenHandler,
// принимая конфиг, URLShortener и SugaredLogger.
func NewShortenHandler(cfg *config.ConfigType, service service.URLShortener, logger *zap.SugaredLogger) *ShortenHandler {
	return &ShortenHandler{cfg: cfg, Service: service, logger: logger}
}

// shortenError отвечает клиенту по ошибке сервиса. Возвращает false,
// если ошибка не помешала выдать токен (ErrConflict или nil).
func (h *ShortenHandler) shortenError(c *gin.Context, err error) bool {
	switch {
	case err == nil, errors.Is(err, service.ErrConflict):
		return false
	case errors.Is(err, service.ErrInvalidURL):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidURL.Error()})
	default:
		h.logger.Errorw("Failed to shorten URL", "error", err, "request_id", c.GetString(utils.RequestIDKey))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to shorten URL"})
	}
	return true
}

// URLCreator обрабатывает POST /
// Читает из тела запроса plain-text URL, сокращает его
// и возвращает короткую ссылку в виде text/plain.
// Если URL уже сокращался, возвращает 409 Conflict с той же ссылкой.
func (h *ShortenHandler) URLCreator(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	token, err := h.Service.ShortenURL(c.Request.Context(), string(body))
	if h.shortenError(c, err) {
		return
	}

	c.Header("Content-Type", "text/plain")
	if errors.Is(err, service.ErrConflict) {
		c.String(http.StatusConflict, utils.ShortLink(h.cfg.BaseAddress, token))
	} else {
		c.String(http.StatusCreated, utils.ShortLink(h.cfg.BaseAddress, token))
	}
}

type shortenRequest struct {
	URL string `json:"url"`
}

// URLCreatorJSON обрабатывает POST /api/shorten
// Принимает JSON {"url": "..."} и возвращает JSON {"result": "..."}.
// В случае конфликта возвращает 409 Conflict.
func (h *ShortenHandler) URLCreatorJSON(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	var req shortenRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	token, err := h.Service.ShortenURL(c.Request.Context(), req.URL)
	if h.shortenError(c, err) {
		return
	}

	resp := struct {
		Result string `json:"result"`
	}{
		Result: utils.ShortLink(h.cfg.BaseAddress, token),
	}
	if errors.Is(err, service.ErrConflict) {
		c.JSON(http.StatusConflict, resp)
	} else {
		c.JSON(http.StatusCreated, resp)
	}
}

// ShortURL обрабатывает POST /url/shorten
// Принимает JSON {"url": "..."} и всегда отвечает 200 с {"short_url": "..."}:
// повторный запрос того же URL возвращает ту же ссылку.
func (h *ShortenHandler) ShortURL(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	var req shortenRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	token, err := h.Service.ShortenURL(c.Request.Context(), req.URL)
	if h.shortenError(c, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"short_url": utils.ShortLink(h.cfg.BaseAddress, token)})
}

// URLRequest описывает элемент входного массива для batch-сокращения.
type URLRequest struct {
	CorrelationID string `json:"correlation_id"`
	OriginalURL   string `json:"original_url"`
}

// URLResponse описывает результат batch-сокращения для одного URL.
type URLResponse struct {
	CorrelationID string `json:"correlation_id"`
	ShortURL      string `json:"short_url"`
}

// URLCreatorBatch обрабатывает POST /api/shorten/batch
// Принимает JSON-массив URLRequest и возвращает JSON-массив URLResponse
// в том же порядке, возвращая 201 Created.
func (h *ShortenHandler) URLCreatorBatch(c *gin.Context) {
	utils.LogRequest(c, h.logger)

	var requestURLs []URLRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&requestURLs); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}
	if len(requestURLs) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Empty batch"})
		return
	}

	inputURLs := make([]string, len(requestURLs))
	for i, req := range requestURLs {
		inputURLs[i] = req.OriginalURL
	}

	tokens, err := h.Service.ShortenURLs(c.Request.Context(), inputURLs)
	if h.shortenError(c, err) {
		return
	}

	responseURLs := make([]URLResponse, len(requestURLs))
	for i, req := range requestURLs {
		responseURLs[i] = URLResponse{
			CorrelationID: req.CorrelationID,
			ShortURL:      utils.ShortLink(h.cfg.BaseAddress, tokens[i]),
		}
	}

	c.JSON(http.StatusCreated, responseURLs)
}
