package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey int

const identityContextKey contextKey = iota

// ContextWithIdentity returns a new context carrying the given identity.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext extracts the identity from the context, or nil if the
// request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

// IdentityLookup resolves a token subject to the current user record. It
// returns ErrUnknownSubject when the user has been deleted.
type IdentityLookup interface {
	LookupIdentity(ctx context.Context, id uuid.UUID) (*Identity, error)
}

// Authenticator resolves bearer tokens into identities.
type Authenticator struct {
	tokens  *TokenManager
	lookup  IdentityLookup
	observe func(outcome string)
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *TokenManager, lookup IdentityLookup) *Authenticator {
	return &Authenticator{tokens: tokens, lookup: lookup}
}

// OnOutcome registers fn to be called with "success" or a failure reason for
// every request carrying credentials.
func (a *Authenticator) OnOutcome(fn func(outcome string)) {
	a.observe = fn
}

// Resolve authenticates r. It returns ErrMissingToken when no Authorization
// header is present.
func (a *Authenticator) Resolve(r *http.Request) (*Identity, error) {
	token, err := extractBearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return a.lookup.LookupIdentity(r.Context(), uid)
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Resolve(r)
		a.record(err)
		if err != nil {
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

// Optional lets anonymous requests through but still rejects a bad token.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := a.Resolve(r)
		a.record(err)
		if err != nil {
			WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

func (a *Authenticator) record(err error) {
	if a.observe == nil {
		return
	}
	switch {
	case err == nil:
		a.observe("success")
	case errors.Is(err, ErrMissingToken):
		a.observe("missing")
	case errors.Is(err, ErrMalformedToken):
		a.observe("malformed")
	case errors.Is(err, ErrExpiredToken):
		a.observe("expired")
	case errors.Is(err, ErrUnknownSubject):
		a.observe("unknown_subject")
	case errors.Is(err, ErrInvalidToken):
		a.observe("invalid")
	default:
		a.observe("error")
	}
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMalformedToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// Status returns the HTTP status for an authentication error.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrExpiredToken), errors.Is(err, ErrUnknownSubject):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMalformedToken), errors.Is(err, ErrInvalidToken):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes the JSON error envelope for an authentication failure.
func WriteError(w http.ResponseWriter, err error) {
	status := Status(err)
	code := "unauthorized"
	message := err.Error()
	switch status {
	case http.StatusUnprocessableEntity:
		code = "invalid_token"
		if errors.Is(err, ErrInvalidToken) {
			message = ErrInvalidToken.Error()
		}
	case http.StatusForbidden:
		code = "forbidden"
	case http.StatusInternalServerError:
		slog.Error("resolving identity", "error", err)
		code = "internal_error"
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message})
}
