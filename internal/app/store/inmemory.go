package store

import (
	"context"
	"sync"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
)

// index - пара карт: data (токен → значение) и rev (значение → токен).
type index struct {
	data map[string]string
	rev  map[string]string
}

func newIndex() index {
	return index{
		data: make(map[string]string),
		rev:  make(map[string]string),
	}
}

// memTx работает с index напрямую и запоминает, как откатить изменения.
type memTx struct {
	idx   *index
	undo  []func()
	added []bimap.Pair
}

func (t *memTx) TokenOf(_ context.Context, longValue string) (string, bool, error) {
	v, ok := t.idx.rev[longValue]
	return v, ok, nil
}

func (t *memTx) LongOf(_ context.Context, token string) (string, bool, error) {
	v, ok := t.idx.data[token]
	return v, ok, nil
}

func (t *memTx) ForEachToken(_ context.Context, fn func(token, longValue string) error) error {
	for k, v := range t.idx.data {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) ForEachLong(_ context.Context, fn func(longValue, token string) error) error {
	for k, v := range t.idx.rev {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) InsertTokenIfAbsent(_ context.Context, token, longValue string) (bool, error) {
	if _, ok := t.idx.data[token]; ok {
		return false, nil
	}
	t.idx.data[token] = longValue
	t.undo = append(t.undo, func() { delete(t.idx.data, token) })
	return true, nil
}

func (t *memTx) InsertLongIfAbsent(_ context.Context, longValue, token string) (bool, error) {
	if _, ok := t.idx.rev[longValue]; ok {
		return false, nil
	}
	t.idx.rev[longValue] = token
	n := len(t.added)
	t.added = append(t.added, bimap.Pair{Token: token, LongValue: longValue})
	t.undo = append(t.undo, func() {
		delete(t.idx.rev, longValue)
		t.added = t.added[:n]
	})
	return true, nil
}

func (t *memTx) DeleteToken(_ context.Context, token string) error {
	prev, ok := t.idx.data[token]
	if !ok {
		return nil
	}
	delete(t.idx.data, token)
	t.undo = append(t.undo, func() { t.idx.data[token] = prev })
	return nil
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// InMemoryStore хранит индексы в памяти процесса под одним RWMutex.
type InMemoryStore struct {
	idx index
	mu  sync.RWMutex
}

func NewStore() *InMemoryStore {
	return &InMemoryStore{idx: newIndex()}
}

// Update выполняет fn под блокировкой на запись. При ошибке fn
// все изменения откатываются.
func (m *InMemoryStore) Update(ctx context.Context, fn func(tx bimap.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{idx: &m.idx}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (m *InMemoryStore) View(ctx context.Context, fn func(tx bimap.ReadTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{idx: &m.idx})
}

func (m *InMemoryStore) Ping(context.Context) error { return nil }

func (m *InMemoryStore) Close() error { return nil }

// Len возвращает количество выданных токенов.
func (m *InMemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.idx.data)
}
