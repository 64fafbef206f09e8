package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/go-playground/validator/v10"
)

// MaxBodySize is the maximum accepted request body (1 MB).
const MaxBodySize = 1 << 20

var (
	// ErrNoInput is returned when the body is missing or is not a single JSON
	// object.
	ErrNoInput = errors.New("no input data provided")
	// ErrTooLarge is returned when the body exceeds MaxBodySize.
	ErrTooLarge = fmt.Errorf("request body exceeds %d bytes", MaxBodySize)
)

// FieldError names the offending field and the constraint it failed.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Options configures a Validator.
type Options struct {
	// Disabled turns Validate into a no-op. Intended for tests that exercise
	// handlers with payloads the schemas would reject.
	Disabled bool
}

// Validator checks payloads against schemas.
type Validator struct {
	disabled bool
	formats  *validator.Validate
}

// New creates a Validator.
func New(opts Options) *Validator {
	return &Validator{
		disabled: opts.Disabled,
		formats:  validator.New(),
	}
}

// Validate checks body against s. It returns ErrNoInput or a *FieldError.
func (v *Validator) Validate(body []byte, s *Schema) error {
	if v.disabled {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ErrNoInput
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return ErrNoInput
	}
	if !AtEOF(dec) {
		return ErrNoInput
	}

	for _, name := range s.Required {
		if _, ok := payload[name]; !ok {
			return fieldErr(name, "'%s' is a required property", name)
		}
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		f, ok := s.Fields[name]
		if !ok {
			if s.AllowUnknown {
				continue
			}
			return fieldErr(name, "additional property '%s' is not allowed", name)
		}
		if err := v.checkField(name, f, payload[name]); err != nil {
			return err
		}
	}
	return nil
}

// AtEOF reports whether dec has nothing but whitespace left after the value
// it just decoded.
func AtEOF(dec *json.Decoder) bool {
	if dec.More() {
		return false
	}
	_, err := dec.Token()
	return errors.Is(err, io.EOF)
}

func (v *Validator) checkField(name string, f Field, val any) error {
	if val == nil {
		if f.Nullable {
			return nil
		}
		return fieldErr(name, "'%s' must not be null", name)
	}

	switch f.Type {
	case TypeInteger:
		n, ok := val.(json.Number)
		if !ok {
			return fieldErr(name, "'%s' must be of type integer", name)
		}
		i, err := n.Int64()
		if err != nil {
			return fieldErr(name, "'%s' must be of type integer", name)
		}
		if f.Minimum != nil && i < int64(*f.Minimum) {
			return fieldErr(name, "'%s' must be at least %d", name, *f.Minimum)
		}
		if f.Maximum != nil && i > int64(*f.Maximum) {
			return fieldErr(name, "'%s' must be at most %d", name, *f.Maximum)
		}
		return nil

	case TypePriority:
		if _, err := model.PriorityFromAny(val); err != nil {
			return fieldErr(name, "'%s' must be one of 1, 2, 3 or HIGH, MEDIUM, LOW (case-insensitive)", name)
		}
		return nil
	}

	s, ok := val.(string)
	if !ok {
		return fieldErr(name, "'%s' must be of type string", name)
	}

	if len(f.Enum) > 0 {
		for _, e := range f.Enum {
			if s == e {
				return nil
			}
		}
		return fieldErr(name, "'%s' must be one of: %s", name, strings.Join(f.Enum, ", "))
	}

	n := utf8.RuneCountInString(s)
	if f.MinLength > 0 && n < f.MinLength {
		return fieldErr(name, "'%s' must be at least %d characters", name, f.MinLength)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return fieldErr(name, "'%s' must be at most %d characters", name, f.MaxLength)
	}

	switch f.Type {
	case TypeUUID:
		if v.formats.Var(s, "uuid") != nil {
			return fieldErr(name, "'%s' must be a valid uuid", name)
		}
	case TypeEmail:
		if v.formats.Var(s, "email") != nil {
			return fieldErr(name, "'%s' must be a valid email address", name)
		}
	case TypeDateTime:
		if v.formats.Var(s, "datetime=2006-01-02T15:04:05Z07:00") != nil {
			return fieldErr(name, "'%s' must be an RFC 3339 date-time", name)
		}
	}
	return nil
}

// Middleware validates the request body against s before calling next. The
// body is restored so the handler can decode it unchanged. Failures are
// reported through onError.
func (v *Validator) Middleware(s *Schema, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body []byte
			if r.Body != nil {
				b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
				if err != nil {
					var mbe *http.MaxBytesError
					if errors.As(err, &mbe) {
						onError(w, r, ErrTooLarge)
						return
					}
					onError(w, r, ErrNoInput)
					return
				}
				body = b
			}

			if err := v.Validate(body, s); err != nil {
				onError(w, r, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
