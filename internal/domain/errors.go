package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownRegion = errors.New("unknown region")
	ErrUnknownCity   = errors.New("unknown city")
	ErrInvalidBatch  = errors.New("invalid batch index")
	ErrNoRestroom    = errors.New("store has no restroom")
)
