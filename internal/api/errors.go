package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/service"
	"github.com/alecgard/taskboard/internal/validate"
)

// errBadBody marks a request body that could not be decoded.
var errBadBody = errors.New("invalid request body")

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Field   string           `json:"field,omitempty"`
	Links   hypermedia.Links `json:"_links,omitempty"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorEnvelope{Error: code, Message: message})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v. The body must hold exactly one
// JSON value and fit in validate.MaxBodySize.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, validate.MaxBodySize))
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return validate.ErrTooLarge
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if !validate.AtEOF(dec) {
		return fmt.Errorf("%w: unexpected data after JSON value", errBadBody)
	}
	return nil
}

// classify maps any handler error to a status, an error code and a message
// that is safe to show the caller.
func classify(err error) (status int, code, message, field string) {
	var fe *validate.FieldError
	var se *service.Error
	switch {
	case errors.Is(err, validate.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large", err.Error(), ""
	case errors.Is(err, validate.ErrNoInput):
		return http.StatusBadRequest, "validation_error", err.Error(), ""
	case errors.As(err, &fe):
		return http.StatusBadRequest, "validation_error", fe.Message, fe.Field
	case errors.Is(err, errBadBody):
		return http.StatusBadRequest, "invalid_body", "failed to parse request body", ""
	case errors.As(err, &se):
		field = se.Field
		message = se.Message
		switch se.Kind {
		case service.KindValidation:
			return http.StatusBadRequest, "validation_error", message, field
		case service.KindConflict:
			return http.StatusBadRequest, "conflict", message, field
		case service.KindInvariant:
			return http.StatusBadRequest, "invariant_violation", message, field
		case service.KindNotFound:
			return http.StatusNotFound, "not_found", message, field
		case service.KindForbidden:
			return http.StatusForbidden, "forbidden", message, field
		case service.KindUnauthenticated:
			return http.StatusUnauthorized, "unauthorized", message, field
		}
	}
	if s := auth.Status(err); s != http.StatusInternalServerError {
		code := "unauthorized"
		switch s {
		case http.StatusUnprocessableEntity:
			code = "invalid_token"
		case http.StatusForbidden:
			code = "forbidden"
		}
		return s, code, err.Error(), ""
	}
	return http.StatusInternalServerError, "internal_error", "internal server error", ""
}

// writeServiceError is the single mapping from errors to responses. 500s are
// logged with the underlying error; the caller only sees a generic message.
func (b *base) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, field := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, errorEnvelope{
		Error:   code,
		Message: message,
		Field:   field,
		Links:   b.links.RootLinks(),
	})
}
