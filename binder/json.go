package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxBodySize limits JSON bodies unless JSONWithLimit is used.
const DefaultMaxBodySize int64 = 1 << 20

// JSON decodes an application/json body into v. Unknown fields and trailing
// data are rejected.
func JSON() func(r *http.Request, v any) error {
	return JSONWithLimit(DefaultMaxBodySize)
}

// JSONWithLimit is JSON with a custom body size limit in bytes.
func JSONWithLimit(limit int64) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, ct)
		}

		dec := json.NewDecoder(io.LimitReader(r.Body, limit+1))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return decodeError(err, limit)
		}
		if dec.InputOffset() > limit {
			return ErrRequestTooLarge
		}

		var extra json.RawMessage
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}
		return nil
	}
}

func decodeError(err error, limit int64) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: empty body", ErrInvalidJSON)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: body truncated or larger than %d bytes", ErrInvalidJSON, limit)
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("%w: syntax error at offset %d", ErrInvalidJSON, syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Errorf("%w: field %q must be %s", ErrInvalidJSON, typeErr.Field, typeErr.Type)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
}
