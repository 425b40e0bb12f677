// Package service содержит бизнес-логику работы с URL.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/cache"
	"github.com/aseptimu/bijective-shortener/internal/app/workers"
)

// MaxURLLen - максимальная длина исходного URL в байтах.
const MaxURLLen = 2048

// Shortener выдаёт токен для длинного значения. created=false означает,
// что пара уже существовала.
type Shortener interface {
	Shorten(ctx context.Context, longValue string) (token string, created bool, err error)
}

type URLShortener interface {
	ShortenURL(ctx context.Context, input string) (string, error)
	ShortenURLs(ctx context.Context, inputs []string) ([]string, error)
}

type URLService struct {
	store   Shortener
	cache   cache.Cache
	workers int
	logger  *zap.SugaredLogger
}

func NewURLService(store Shortener, c cache.Cache, numWorkers int, logger *zap.SugaredLogger) *URLService {
	if c == nil {
		c = cache.Nop{}
	}
	return &URLService{store: store, cache: c, workers: numWorkers, logger: logger}
}

// NormalizeURL обрезает пробелы и проверяет, что это абсолютный http(s) URL
// с хостом и допустимой длиной.
func NormalizeURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || len(input) > MaxURLLen {
		return "", ErrInvalidURL
	}
	parsedURI, err := url.ParseRequestURI(input)
	if err != nil || parsedURI.Host == "" {
		return "", ErrInvalidURL
	}
	if parsedURI.Scheme != "http" && parsedURI.Scheme != "https" {
		return "", ErrInvalidURL
	}
	return input, nil
}

// ShortenURL возвращает токен для input. Если URL уже сокращался,
// вместе с токеном возвращается ErrConflict.
func (s *URLService) ShortenURL(ctx context.Context, input string) (string, error) {
	longURL, err := NormalizeURL(input)
	if err != nil {
		return "", err
	}

	token, created, err := s.store.Shorten(ctx, longURL)
	if err != nil {
		return "", fmt.Errorf("shorten %q: %w", longURL, err)
	}
	s.cache.Set(ctx, token, longURL)

	if !created {
		return token, ErrConflict
	}
	return token, nil
}

// ShortenURLs сокращает пакет URL. Сначала проверяются все входы,
// затем они обрабатываются пулом воркеров. Порядок результатов совпадает с порядком входов.
func (s *URLService) ShortenURLs(ctx context.Context, inputs []string) ([]string, error) {
	normalized := make([]string, len(inputs))
	for i, input := range inputs {
		longURL, err := NormalizeURL(input)
		if err != nil {
			return nil, fmt.Errorf("one or more URLs are invalid: %w", err)
		}
		normalized[i] = longURL
	}

	return workers.ShortenBatch(ctx, normalized, s.workers, func(ctx context.Context, longURL string) (string, error) {
		token, _, err := s.store.Shorten(ctx, longURL)
		if err != nil {
			return "", err
		}
		s.cache.Set(ctx, token, longURL)
		return token, nil
	}, s.logger)
}
