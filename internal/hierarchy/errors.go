package hierarchy

import (
	"errors"
	"fmt"
)

// NotFoundError reports an issue key that does not exist in the tracker.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("issue %s not found", e.Key)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// FetchError reports a batch read that failed while expanding an issue.
type FetchError struct {
	Key string // Issue being expanded
	Op  string // "children" or "links"
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s of %s: %v", e.Op, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
