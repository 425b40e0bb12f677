package jitter

import "math/rand/v2"

func Delay(max int64) int64 {
	return rand.Int64N(max)
}
