package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes shared across packages.
// Callers branch on them with errors.Is.
var (
	// ErrNotFound reports a token absent from the store vocabulary.
	ErrNotFound = errors.New("token not found")

	// ErrInvalidVector reports a zero-magnitude vector, for which cosine
	// similarity is undefined.
	ErrInvalidVector = errors.New("invalid zero-magnitude vector")

	// ErrMalformedRecord reports an analogy dataset record that does not
	// follow the five-field format.
	ErrMalformedRecord = errors.New("malformed analogy record")

	// ErrModelUnavailable reports a model that could not be produced from
	// cache, disk or network.
	ErrModelUnavailable = errors.New("model unavailable")
)

// MissingTokenError identifies which analogy input token was absent from
// the vocabulary. It unwraps to ErrNotFound.
type MissingTokenError struct {
	Token string
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("token %q not in vocabulary", e.Token)
}

func (e *MissingTokenError) Unwrap() error { return ErrNotFound }

// MalformedRecordError carries the position and cause of a bad dataset
// record. It unwraps to ErrMalformedRecord.
type MalformedRecordError struct {
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record on line %d: %s", e.Line, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }
