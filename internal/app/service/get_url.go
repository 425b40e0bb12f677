package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
	"github.com/aseptimu/bijective-shortener/internal/app/cache"
)

// Resolver описывает получение исходного URL из хранилища.
type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// TokenValidator отсекает строки, которые не могут быть токеном.
type TokenValidator interface {
	Valid(token string) bool
}

// GetURLService разрешает токены: сначала кэш, затем хранилище.
type GetURLService struct {
	store     Resolver
	cache     cache.Cache
	validator TokenValidator
}

// NewGetURLService создаёт новый GetURLService. validator может быть nil.
func NewGetURLService(store Resolver, c cache.Cache, validator TokenValidator) *GetURLService {
	if c == nil {
		c = cache.Nop{}
	}
	return &GetURLService{store: store, cache: c, validator: validator}
}

// GetOriginalURL возвращает исходный URL или ErrURLNotFound.
func (s *GetURLService) GetOriginalURL(ctx context.Context, token string) (string, error) {
	if s.validator != nil && !s.validator.Valid(token) {
		return "", ErrURLNotFound
	}
	if longURL, ok := s.cache.Get(ctx, token); ok {
		return longURL, nil
	}

	longURL, err := s.store.Resolve(ctx, token)
	if errors.Is(err, bimap.ErrNotFound) {
		return "", ErrURLNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", token, err)
	}

	s.cache.Set(ctx, token, longURL)
	return longURL, nil
}
