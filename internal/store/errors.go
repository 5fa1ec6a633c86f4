package store

import "errors"

var (
	// ErrNotEligible marks a reaction attempt on a message that is not
	// the latest eligible bot turn.
	ErrNotEligible = errors.New("message not eligible for a new reaction")
	// ErrNotFound marks an unknown message id.
	ErrNotFound = errors.New("message not found")
)
