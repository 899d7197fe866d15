package common

import (
	"errors"
	"strings"
)

var (
	// ErrNilPointer defines an error for a nil pointer
	ErrNilPointer = errors.New("nil pointer")
	// ErrEmptySymbol defines an error for a missing instrument symbol
	ErrEmptySymbol = errors.New("symbol is empty")
)

// multiError holds all the errors as a slice, this is unexported so it forces
// inbuilt error handling.
type multiError struct {
	loadedErrors []error
}

// AppendError appends error in a more idiomatic way. This can start out as a
// standard error e.g. err := errors.New("random error")
// err = AppendError(err, errors.New("another random error"))
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	errSliceP, ok := original.(*multiError)
	if !ok {
		errSliceP = &multiError{}
		if original != nil {
			errSliceP.loadedErrors = append(errSliceP.loadedErrors, original)
		}
	}
	if incomingSlice, ok := incoming.(*multiError); ok {
		// Prevent nesting if the incoming error is a multi error
		errSliceP.loadedErrors = append(errSliceP.loadedErrors, incomingSlice.loadedErrors...)
	} else {
		errSliceP.loadedErrors = append(errSliceP.loadedErrors, incoming)
	}
	return errSliceP
}

// Error displays all errors comma separated
func (e *multiError) Error() string {
	allErrors := make([]string, len(e.loadedErrors))
	for x := range e.loadedErrors {
		allErrors[x] = e.loadedErrors[x].Error()
	}
	return strings.Join(allErrors, ", ")
}

// Unwrap returns all loaded errors for errors.Is and errors.As matching
func (e *multiError) Unwrap() []error {
	return e.loadedErrors
}
