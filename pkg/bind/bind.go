// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/marmita/config"
	"github.com/shashiranjanraj/marmita/pkg/validate"
)

// maxBodyBytes returns the configured request body size limit (default 4 MB).
func maxBodyBytes() int64 {
	n := config.Int("MAX_BODY_BYTES", 4<<20)
	if n <= 0 {
		return 4 << 20
	}
	return int64(n)
}

// JSON decodes r.Body as JSON into dest and runs validation.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs = validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// Form decodes an url-encoded body into the `form`-tagged
// fields of dest and runs validation. Supported field kinds: string, bool,
// signed and unsigned integers.
func Form(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.New("bind: dest must be a pointer to a struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	errs = map[string]string{}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" || !r.Form.Has(name) {
			continue
		}
		raw := strings.TrimSpace(r.Form.Get(name))
		if err := setField(rv.Field(i), raw); err != nil {
			errs[name] = fmt.Sprintf("The %s field has an invalid value.", name)
		}
	}
	if len(errs) > 0 {
		return errs, nil
	}

	if errs = validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

func setField(v reflect.Value, raw string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b := raw == "on" || raw == "1" || strings.EqualFold(raw, "true")
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	default:
		return fmt.Errorf("bind: unsupported kind %s", v.Kind())
	}
	return nil
}
