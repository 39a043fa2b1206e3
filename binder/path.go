package binder

import (
	"encoding"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// Path binds fields tagged `path:"name"` using extractor, usually chi.URLParam.
// Supported field types are string, signed integers, bool and anything that
// implements encoding.TextUnmarshaler (uuid.UUID among them).
//
//	type offerRequest struct {
//		OfferID uuid.UUID `path:"offer_id"`
//	}
//
//	r.Get("/offers/{offer_id}", handler.Wrap(getOffer,
//		handler.WithBinders[offerRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrInvalidPath)
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: target must be a non-nil pointer to struct", ErrInvalidPath)
		}
		rv = rv.Elem()
		rt := rv.Type()

		for i := range rv.NumField() {
			field, sf := rv.Field(i), rt.Field(i)
			if !field.CanSet() {
				continue
			}
			name, ok := tagName(sf, "path")
			if !ok {
				continue
			}
			raw := extractor(r, name)
			if raw == "" {
				continue
			}
			if err := setField(field, raw); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidPath, name, err)
			}
		}
		return nil
	}
}

func tagName(sf reflect.StructField, key string) (string, bool) {
	tag := sf.Tag.Get(key)
	if tag == "" || tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, true
}

var textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()

func setField(field reflect.Value, raw string) error {
	if field.Addr().Type().Implements(textUnmarshaler) {
		return field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw))
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
