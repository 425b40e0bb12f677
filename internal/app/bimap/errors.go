package bimap

import "errors"

var (
	ErrNotFound           = errors.New("token not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTokenGeneration    = errors.New("token generation failed")
	ErrAttemptsExhausted  = errors.New("shorten attempts exhausted")
	ErrInconsistent       = errors.New("indices are inconsistent")
)

// Временные коллизии: наружу не выходят, вызывают повтор попытки.
var (
	errTokenTaken  = errors.New("token already issued")
	errLongClaimed = errors.New("long value claimed by a concurrent caller")
)
