// Package token генерирует короткие токены для сокращённых ссылок.
// Токен - это n криптографически случайных байт в кодировке base64url без паддинга.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// DefaultBytes - размер токена в байтах по умолчанию (6 символов после кодирования).
const DefaultBytes = 4

// MaxBytes - наибольший размер токена; MaxLen символов помещаются в колонку token VARCHAR(32).
const (
	MaxBytes = 24
	MaxLen   = 32
)

var ErrShortRead = errors.New("token: short read from random source")

// Generator выдаёт случайные токены фиксированной длины.
type Generator struct {
	n      int
	reader io.Reader
}

// NewGenerator создаёт генератор на n байт. При n <= 0 используется DefaultBytes.
func NewGenerator(n int) *Generator {
	if n <= 0 {
		n = DefaultBytes
	}
	return &Generator{n: n, reader: rand.Reader}
}

// NewGeneratorFromReader нужен тестам: источник случайности подменяется.
func NewGeneratorFromReader(n int, r io.Reader) *Generator {
	g := NewGenerator(n)
	g.reader = r
	return g
}

// Generate возвращает новый кандидат в токены.
func (g *Generator) Generate() (string, error) {
	b := make([]byte, g.n)
	if _, err := io.ReadFull(g.reader, b); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return "", ErrShortRead
		}
		return "", fmt.Errorf("token: read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Len возвращает длину токена в символах.
func (g *Generator) Len() int {
	return base64.RawURLEncoding.EncodedLen(g.n)
}

// Valid проверяет, что s похож на токен: алфавит base64url и длина не больше MaxLen.
// Текущий размер генератора не учитывается: токены, выданные при другом
// TOKEN_BYTES, остаются в индексе и должны разрешаться.
func (g *Generator) Valid(s string) bool {
	if s == "" || len(s) > MaxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlphabet(s[i]) {
			return false
		}
	}
	return true
}

func isAlphabet(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
