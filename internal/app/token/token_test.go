package token

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestGenerate_Length(t *testing.T) {
	g := NewGenerator(0)
	tok, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, tok, 6)
	assert.True(t, g.Valid(tok))
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGeneratorFromReader(4, bytes.NewReader([]byte{0xfb, 0xff, 0x00, 0x01}))
	tok, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, "-_8AAQ", tok)
}

func TestGenerate_ShortRead(t *testing.T) {
	g := NewGeneratorFromReader(4, bytes.NewReader([]byte{1, 2}))
	_, err := g.Generate()
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestGenerate_ReaderError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	g := NewGeneratorFromReader(4, failingReader{err: boom})
	_, err := g.Generate()
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_Distinct(t *testing.T) {
	g := NewGenerator(DefaultBytes)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok, err := g.Generate()
		require.NoError(t, err)
		seen[tok] = struct{}{}
	}
	// 2^32 вариантов, совпадения на тысяче попыток практически исключены
	assert.Greater(t, len(seen), 990)
}

func TestValid(t *testing.T) {
	g := NewGenerator(4)
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"ok", "aZ09-_", true},
		{"issued with fewer bytes", "abc", true},
		{"issued with more bytes", "abcdefgh", true},
		{"max length", strings.Repeat("A", MaxLen), true},
		{"too long", strings.Repeat("A", MaxLen+1), false},
		{"padding", "abcd==", false},
		{"std alphabet", "ab+/cd", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Valid(tt.in))
		})
	}
}

func TestValid_AcceptsTokensOfOtherSizes(t *testing.T) {
	small := NewGeneratorFromReader(4, bytes.NewReader([]byte{1, 2, 3, 4}))
	tok, err := small.Generate()
	require.NoError(t, err)

	assert.True(t, NewGenerator(6).Valid(tok))
	assert.True(t, NewGenerator(MaxBytes).Valid(tok))

	large, err := NewGenerator(MaxBytes).Generate()
	require.NoError(t, err)
	assert.Len(t, large, MaxLen)
	assert.True(t, small.Valid(large))
}
