package token

import (
	"math/rand" // want "token package must not import math/rand, use crypto/rand"
)

func Generate() int {
	return rand.Intn(100)
}
