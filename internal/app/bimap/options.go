package bimap

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy ограничивает цикл повторов в Shorten.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy используется, если политика не задана.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 16,
	BaseDelay:   time.Millisecond,
	MaxDelay:    50 * time.Millisecond,
}

// backoff возвращает паузу перед попыткой attempt (нумерация с 1): случайное
// значение из [0, min(MaxDelay, BaseDelay*2^(attempt-1))].
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt <= 0 {
		return 0
	}
	limit := p.MaxDelay
	if shift := attempt - 1; shift < 31 {
		if d := p.BaseDelay << shift; d > 0 && (limit <= 0 || d < limit) {
			limit = d
		}
	}
	if limit <= 0 {
		return 0
	}
	return rand.N(limit + 1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Observer получает события аллокатора. Реализация с Prometheus лежит в пакете metrics.
type Observer interface {
	Shortened(created bool)
	TokenCollision()
	RaceLost()
	AttemptsExhausted()
}

type nopObserver struct{}

func (nopObserver) Shortened(bool)     {}
func (nopObserver) TokenCollision()    {}
func (nopObserver) RaceLost()          {}
func (nopObserver) AttemptsExhausted() {}

// Option настраивает Store.
type Option func(*Store)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetryPolicy задаёт политику повторов. Нулевые поля берутся из DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Store) {
		if p.MaxAttempts <= 0 {
			p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
		}
		if p.BaseDelay < 0 {
			p.BaseDelay = 0
		}
		if p.MaxDelay < p.BaseDelay {
			p.MaxDelay = p.BaseDelay
		}
		s.policy = p
	}
}

func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}
