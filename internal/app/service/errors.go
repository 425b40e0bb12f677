package service

import "errors"

var (
	ErrURLNotFound = errors.New("URL not found")
	ErrInvalidURL  = errors.New("invalid URL format")
	ErrConflict    = errors.New("URL already exists")
)
