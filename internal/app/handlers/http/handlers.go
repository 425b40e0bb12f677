package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/config"
	"github.com/aseptimu/bijective-shortener/internal/app/handlers/http/dbhandlers"
	"github.com/aseptimu/bijective-shortener/internal/app/handlers/http/shortenurlhandlers"
	"github.com/aseptimu/bijective-shortener/internal/app/service"
)

const indexMessage = "URL shortener is running"

type Handlers interface {
	RegisterRoutes(r *gin.Engine)
}

type handlersImpl struct {
	cfg       *config.ConfigType
	urlSvc    service.URLShortener
	urlGetSvc shortenurlhandlers.URLGetter
	pinger    dbhandlers.Pinger
	metrics   http.Handler
	logger    *zap.SugaredLogger
}

// New собирает хендлеры. metrics может быть nil, тогда /metrics не регистрируется.
func New(
	cfg *config.ConfigType,
	urlSvc service.URLShortener,
	urlGetSvc shortenurlhandlers.URLGetter,
	pinger dbhandlers.Pinger,
	metrics http.Handler,
	logger *zap.SugaredLogger,
) Handlers {
	return &handlersImpl{
		cfg:       cfg,
		urlSvc:    urlSvc,
		urlGetSvc: urlGetSvc,
		pinger:    pinger,
		metrics:   metrics,
		logger:    logger,
	}
}

func (h *handlersImpl) RegisterRoutes(r *gin.Engine) {
	shortenHandler := shortenurlhandlers.NewShortenHandler(h.cfg, h.urlSvc, h.logger)
	getURLHandler := shortenurlhandlers.NewGetURLHandler(h.cfg, h.urlGetSvc, h.logger)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, indexMessage) })
	r.GET("/ping", dbhandlers.NewPingHandler(h.pinger).Ping)
	r.GET("/r/:token", getURLHandler.GetURL)
	r.GET("/api/expand/:token", getURLHandler.ExpandURL)
	r.POST("/", shortenHandler.URLCreator)
	r.POST("/url/shorten", shortenHandler.ShortURL)
	r.POST("/api/shorten", shortenHandler.URLCreatorJSON)
	r.POST("/api/shorten/batch", shortenHandler.URLCreatorBatch)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}
}
