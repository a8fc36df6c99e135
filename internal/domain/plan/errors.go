package plan

import "errors"

// Domain errors for plan items and constraints

var (
	ErrMissingName = errors.New("plan item is missing a name")
	ErrMissingKind = errors.New("plan item is missing a kind")
	ErrUnknownKind = errors.New("plan item kind must be meal or exercise")

	ErrInvalidSeverity = errors.New("injury severity must be mild, moderate or severe")
)
