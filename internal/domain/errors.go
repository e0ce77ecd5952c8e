package domain

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrOutOfStock = errors.New("out of stock")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("network failure")
)
