// Package workers содержит пул горутин для пакетного сокращения URL.
package workers

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ShortenFunc сокращает один URL.
type ShortenFunc func(ctx context.Context, input string) (string, error)

// ShortenBatch запускает fn для каждого входа не более чем в numWorkers горутинах.
// Результаты идут в порядке входов. Первая ошибка отменяет оставшиеся задачи.
func ShortenBatch(ctx context.Context, inputs []string, numWorkers int, fn ShortenFunc, logger *zap.SugaredLogger) ([]string, error) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	results := make([]string, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			short, err := fn(ctx, input)
			if err != nil {
				logger.Debugw("Batch item failed", "index", i, "error", err)
				return err
			}
			results[i] = short
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debugw("Batch shortened", "size", len(inputs), "workers", numWorkers)
	return results, nil
}
