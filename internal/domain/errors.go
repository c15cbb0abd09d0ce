package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTransport        = errors.New("transport error")
	ErrEmptyResponse    = errors.New("no data returned")
	ErrDecode           = errors.New("decode error")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// FetchError is returned by every PokeAPI call. Kind is one of the Err*
// sentinels above; Err is the underlying cause, if any.
type FetchError struct {
	Kind error
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.URL)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == e.Kind
}
