package user

import "errors"

var (
	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("email address is not valid")
	ErrNameRequired  = errors.New("name is required")
)
