package merge

import (
	"errors"
	"fmt"
)

var (
	// ErrBaseNotFound is returned when the base document does not exist.
	ErrBaseNotFound = errors.New("base document not found")

	// ErrNotObject is returned when a document or one of its merged sections is not a JSON object.
	ErrNotObject = errors.New("not a JSON object")
)

// FragmentError is a fragment that could not be read or parsed.
// It aborts the whole merge before anything is written.
type FragmentError struct {
	Path string
	Err  error
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Path, e.Err)
}

func (e *FragmentError) Unwrap() error {
	return e.Err
}
