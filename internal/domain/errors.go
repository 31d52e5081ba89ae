package domain

import "errors"

// Sentinel errors shared across the service and storage layers.
// Check with errors.Is.
var (
	ErrCardNotFound  = errors.New("card not found")
	ErrDeckNotFound  = errors.New("deck not found")
	ErrInvalidRating = errors.New("invalid rating")
)
