package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrRequestTooLarge      = errors.New("request body too large")
	ErrInvalidPath          = errors.New("invalid path parameter")
)
