package exercise

import "errors"

var (
	ErrInvalidProfile = errors.New("invalid exercise profile")
	ErrLoadCatalog    = errors.New("load exercise catalog failed")
)
