package order

import "errors"

// Errors returned by draft and cart operations.
var (
	ErrItemUnavailable = errors.New("item is unavailable")
	ErrGroupNotFound   = errors.New("option group not found")
	ErrChoiceNotFound  = errors.New("choice not found in group")
	ErrGroupFull       = errors.New("option group is at its selection cap")
	ErrMissingRequired = errors.New("required option group has no selection")
	ErrLineNotFound    = errors.New("cart line not found")
)
