package git

import "errors"

// Repository lookup errors
var (
	ErrSourceNotSet  = errors.New("source folder is not set")
	ErrNotRepository = errors.New("source folder is not a git repository")
)
