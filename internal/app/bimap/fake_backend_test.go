package bimap

import (
	"context"
	"sync"
)

// fakeBackend - потокобезопасный бэкенд на картах с журналом отката
// и точками внедрения сбоев.
type fakeBackend struct {
	mu      sync.RWMutex
	forward map[string]string
	reverse map[string]string

	// insertLongHook, если задан, подменяет InsertLongIfAbsent.
	insertLongHook func(tx *fakeTx, longValue, token string) (bool, error)
	deleteErr      error
	viewErr        error
	updateErr      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		forward: make(map[string]string),
		reverse: make(map[string]string),
	}
}

type fakeTx struct {
	b    *fakeBackend
	undo []func()
}

func (b *fakeBackend) Update(_ context.Context, fn func(Tx) error) error {
	if b.updateErr != nil {
		return b.updateErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tx := &fakeTx{b: b}
	if err := fn(tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

func (b *fakeBackend) View(_ context.Context, fn func(ReadTx) error) error {
	if b.viewErr != nil {
		return b.viewErr
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fn(&fakeTx{b: b})
}

func (t *fakeTx) TokenOf(_ context.Context, longValue string) (string, bool, error) {
	v, ok := t.b.forward[longValue]
	return v, ok, nil
}

func (t *fakeTx) LongOf(_ context.Context, token string) (string, bool, error) {
	v, ok := t.b.reverse[token]
	return v, ok, nil
}

func (t *fakeTx) ForEachToken(_ context.Context, fn func(string, string) error) error {
	for k, v := range t.b.reverse {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *fakeTx) ForEachLong(_ context.Context, fn func(string, string) error) error {
	for k, v := range t.b.forward {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *fakeTx) InsertTokenIfAbsent(_ context.Context, token, longValue string) (bool, error) {
	if _, ok := t.b.reverse[token]; ok {
		return false, nil
	}
	t.b.reverse[token] = longValue
	t.undo = append(t.undo, func() { delete(t.b.reverse, token) })
	return true, nil
}

func (t *fakeTx) InsertLongIfAbsent(_ context.Context, longValue, token string) (bool, error) {
	if t.b.insertLongHook != nil {
		return t.b.insertLongHook(t, longValue, token)
	}
	return t.insertLong(longValue, token), nil
}

func (t *fakeTx) insertLong(longValue, token string) bool {
	if _, ok := t.b.forward[longValue]; ok {
		return false
	}
	t.b.forward[longValue] = token
	t.undo = append(t.undo, func() { delete(t.b.forward, longValue) })
	return true
}

func (t *fakeTx) DeleteToken(_ context.Context, token string) error {
	if t.b.deleteErr != nil {
		return t.b.deleteErr
	}
	prev, ok := t.b.reverse[token]
	if !ok {
		return nil
	}
	delete(t.b.reverse, token)
	t.undo = append(t.undo, func() { t.b.reverse[token] = prev })
	return nil
}

// seqGenerator отдаёт токены по списку, затем повторяет последний.
type seqGenerator struct {
	mu     sync.Mutex
	tokens []string
	calls  int
	err    error
}

func (g *seqGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	i := g.calls
	if i >= len(g.tokens) {
		i = len(g.tokens) - 1
	}
	g.calls++
	return g.tokens[i], nil
}

type countingObserver struct {
	mu                                        sync.Mutex
	created, existing, collisions, races, out int
}

func (o *countingObserver) Shortened(created bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if created {
		o.created++
	} else {
		o.existing++
	}
}

func (o *countingObserver) TokenCollision() {
	o.mu.Lock()
	o.collisions++
	o.mu.Unlock()
}

func (o *countingObserver) RaceLost() {
	o.mu.Lock()
	o.races++
	o.mu.Unlock()
}

func (o *countingObserver) AttemptsExhausted() {
	o.mu.Lock()
	o.out++
	o.mu.Unlock()
}
