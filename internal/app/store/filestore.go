package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
)

// FileStore держит индексы в памяти и дописывает каждую новую пару
// в журнал JSON lines. При старте журнал проигрывается заново.
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	idx      index
	file     *os.File
	logger   *zap.SugaredLogger
}

func NewFileStore(filePath string, logger *zap.SugaredLogger) (*FileStore, error) {
	fs := &FileStore{
		filePath: filePath,
		idx:      newIndex(),
		logger:   logger,
	}
	if err := fs.loadFromFile(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open storage file: %w", err)
	}
	fs.file = file
	return fs, nil
}

func (fs *FileStore) loadFromFile() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open storage file: %w", err)
	}
	defer file.Close()

	// Строки журнала не ограничены по длине: длинные значения читаются целиком.
	reader := bufio.NewReader(file)
	for line := 1; ; line++ {
		data, err := reader.ReadBytes('\n')
		if len(data) > 0 {
			fs.replayLine(line, data)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read storage file: %w", err)
		}
	}
	fs.logger.Debugw("Storage file loaded", "file", fs.filePath, "pairs", len(fs.idx.data))
	return nil
}

func (fs *FileStore) replayLine(line int, data []byte) {
	var pair bimap.Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		fs.logger.Warnw("Skipping corrupt storage line", "file", fs.filePath, "line", line, "error", err)
		return
	}
	if pair.Token == "" || pair.LongValue == "" {
		fs.logger.Warnw("Skipping incomplete storage line", "file", fs.filePath, "line", line)
		return
	}
	_, tokenTaken := fs.idx.data[pair.Token]
	_, longTaken := fs.idx.rev[pair.LongValue]
	if tokenTaken || longTaken {
		fs.logger.Warnw("Skipping conflicting storage line", "file", fs.filePath, "line", line, "token", pair.Token)
		return
	}
	fs.idx.data[pair.Token] = pair.LongValue
	fs.idx.rev[pair.LongValue] = pair.Token
}

func (fs *FileStore) saveToFile(pairs []bimap.Pair) error {
	if fs.file == nil {
		return os.ErrClosed
	}
	var buf []byte
	for _, p := range pairs {
		jsonData, err := json.Marshal(p)
		if err != nil {
			return err
		}
		buf = append(buf, jsonData...)
		buf = append(buf, '\n')
	}
	if _, err := fs.file.Write(buf); err != nil {
		return fmt.Errorf("append to storage file: %w", err)
	}
	return nil
}

// Update применяет fn к индексам в памяти и до снятия блокировки дописывает
// новые пары в журнал. Если запись не удалась, изменения в памяти откатываются.
func (fs *FileStore) Update(ctx context.Context, fn func(tx bimap.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	tx := &memTx{idx: &fs.idx}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	if len(tx.added) == 0 {
		return nil
	}
	if err := fs.saveToFile(tx.added); err != nil {
		tx.rollback()
		fs.logger.Errorw("Failed to persist pairs", "file", fs.filePath, "error", err)
		return err
	}
	return nil
}

func (fs *FileStore) View(ctx context.Context, fn func(tx bimap.ReadTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fn(&memTx{idx: &fs.idx})
}

// Ping проверяет, что журнал ещё открыт.
func (fs *FileStore) Ping(context.Context) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.file == nil {
		return os.ErrClosed
	}
	_, err := fs.file.Stat()
	return err
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}
