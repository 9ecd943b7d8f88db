package glucose

import "errors"

var (
	ErrMissingUser = errors.New("missing user id")
	ErrInvalidMeal = errors.New("invalid meal draft")
)
