package element

import "errors"

var (
	// ErrSkipItem discards the object being built. It never escapes the
	// enclosing list.
	ErrSkipItem = errors.New("skip item")
	// ErrDuplicateID reports two objects with the same id in a streaming list.
	ErrDuplicateID = errors.New("duplicate id")
	ErrNoPage      = errors.New("no current page")
)
