package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidProbability = errors.New("probability must be strictly between 0 and 1")
)
