// Package bimap реализует взаимно однозначное отображение длинных значений
// (URL) в короткие токены и обратно.
//
// Store хранит два индекса: прямой (значение → токен) и обратный (токен → значение).
// Оба индекса меняются только вставками «если отсутствует» внутри одной транзакции
// Backend.Update, поэтому читатели никогда не видят половину пары.
package bimap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Pair - одна выданная пара токен/значение.
type Pair struct {
	Token     string `json:"token"`
	LongValue string `json:"long_value"`
}

// Store - аллокатор токенов поверх Backend.
type Store struct {
	backend  Backend
	gen      TokenGenerator
	policy   RetryPolicy
	logger   *zap.SugaredLogger
	observer Observer
}

// New создаёт Store. Backend и генератор обязательны.
func New(backend Backend, gen TokenGenerator, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		gen:      gen,
		policy:   DefaultRetryPolicy,
		logger:   zap.NewNop().Sugar(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shorten возвращает токен для longValue, выдавая новый при первом обращении.
// created сообщает, была ли пара записана именно этим вызовом.
func (s *Store) Shorten(ctx context.Context, longValue string) (string, bool, error) {
	var lastErr error
	for attempt := 0; attempt < s.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.policy.backoff(attempt)); err != nil {
				return "", false, err
			}
		}

		existing, ok, err := s.lookup(ctx, longValue)
		if err != nil {
			return "", false, err
		}
		if ok {
			s.observer.Shortened(false)
			return existing, false, nil
		}

		candidate, err := s.gen.Generate()
		if err != nil {
			return "", false, fmt.Errorf("%w: %w", ErrTokenGeneration, err)
		}

		token, created, err := s.commit(ctx, longValue, candidate)
		switch {
		case err == nil:
			s.observer.Shortened(created)
			return token, created, nil
		case errors.Is(err, errTokenTaken):
			s.logger.Debugw("Token collision, retrying", "token", candidate, "attempt", attempt+1)
			s.observer.TokenCollision()
		case errors.Is(err, errLongClaimed):
			s.logger.Debugw("Lost race for long value, reverse entry rolled back", "token", candidate, "attempt", attempt+1)
			s.observer.RaceLost()
		default:
			return "", false, err
		}
		lastErr = err
	}

	s.observer.AttemptsExhausted()
	s.logger.Warnw("Shorten gave up", "attempts", s.policy.MaxAttempts, "error", lastErr)
	return "", false, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, s.policy.MaxAttempts, lastErr)
}

func (s *Store) lookup(ctx context.Context, longValue string) (string, bool, error) {
	var (
		token string
		ok    bool
	)
	err := s.backend.View(ctx, func(tx ReadTx) error {
		var err error
		token, ok, err = tx.TokenOf(ctx, longValue)
		return err
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return token, ok, nil
}

// commit пытается записать пару (longValue, candidate) одной транзакцией.
// Проигрыш гонки за прямой индекс откатывается удалением обратной записи
// в той же транзакции; если удаление не удалось, транзакция отменяется целиком.
func (s *Store) commit(ctx context.Context, longValue, candidate string) (string, bool, error) {
	var (
		token   string
		created bool
		taken   bool
		lost    bool
	)
	err := s.backend.Update(ctx, func(tx Tx) error {
		existing, ok, err := tx.TokenOf(ctx, longValue)
		if err != nil {
			return err
		}
		if ok {
			token = existing
			return nil
		}

		inserted, err := tx.InsertTokenIfAbsent(ctx, candidate, longValue)
		if err != nil {
			return err
		}
		if !inserted {
			taken = true
			return nil
		}

		inserted, err = tx.InsertLongIfAbsent(ctx, longValue, candidate)
		if err != nil {
			return err
		}
		if !inserted {
			if delErr := tx.DeleteToken(ctx, candidate); delErr != nil {
				return fmt.Errorf("rollback token %q: %w", candidate, delErr)
			}
			lost = true
			return nil
		}

		token, created = candidate, true
		return nil
	})
	switch {
	case err != nil:
		return "", false, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	case taken:
		return "", false, errTokenTaken
	case lost:
		return "", false, errLongClaimed
	}
	return token, created, nil
}

// Resolve возвращает длинное значение по токену или ErrNotFound.
func (s *Store) Resolve(ctx context.Context, token string) (string, error) {
	var (
		longValue string
		ok        bool
	)
	err := s.backend.View(ctx, func(tx ReadTx) error {
		var err error
		longValue, ok, err = tx.LongOf(ctx, token)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if !ok {
		return "", ErrNotFound
	}
	return longValue, nil
}

const maxReportedMismatches = 5

// Verify проверяет, что у каждой записи одного индекса есть согласованная
// запись в другом. Нарушение возвращается как ErrInconsistent.
func (s *Store) Verify(ctx context.Context) error {
	var bad []string
	report := func(format string, args ...any) {
		if len(bad) < maxReportedMismatches {
			bad = append(bad, fmt.Sprintf(format, args...))
		}
	}

	err := s.backend.View(ctx, func(tx ReadTx) error {
		err := tx.ForEachToken(ctx, func(token, longValue string) error {
			got, ok, err := tx.TokenOf(ctx, longValue)
			if err != nil {
				return err
			}
			if !ok {
				report("orphan token %q -> %q", token, longValue)
			} else if got != token {
				report("token %q maps to %q, which maps back to %q", token, longValue, got)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return tx.ForEachLong(ctx, func(longValue, token string) error {
			got, ok, err := tx.LongOf(ctx, token)
			if err != nil {
				return err
			}
			if !ok {
				report("long value %q points to missing token %q", longValue, token)
			} else if got != longValue {
				report("long value %q -> %q, which resolves to %q", longValue, token, got)
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %s", ErrInconsistent, strings.Join(bad, "; "))
	}
	return nil
}
