package common

import "errors"

var (
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrNullValue      = errors.New("null value")
	ErrColumnNotFound = errors.New("column not found")
	ErrChunkNotFound  = errors.New("chunk not found")
	ErrCorruptSegment = errors.New("corrupt segment")
)
