package api

import (
	"net/http"
	"time"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/service"
)

// authHandler groups authentication HTTP handlers.
type authHandler struct {
	*base
	tokens *auth.TokenManager
}

func newAuthHandler(b *base, tokens *auth.TokenManager) *authHandler {
	return &authHandler{base: b, tokens: tokens}
}

type loginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Links       hypermedia.Links `json:"_links"`
}

// Login handles POST /login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	u, err := h.svc.Users.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.observeLogin(true)
	case service.KindOf(err) == service.KindUnauthenticated:
		h.observeLogin(false)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(u)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// last_login changed.
	h.committed(r, "login", hypermedia.UserResource.Name, u.ID.String(), "/users")

	links := h.links.RootLinks()
	links["user"] = h.links.Link(hypermedia.RouteUser, http.MethodGet, "Authenticated user", map[string]string{"user_id": u.ID.String()}, nil)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Links:       links,
	})
}

func (h *authHandler) observeLogin(success bool) {
	if h.metrics != nil {
		h.metrics.IncLogin(success)
	}
}

// Me handles GET /me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		h.writeServiceError(w, r, auth.ErrMissingToken)
		return
	}
	u, err := h.svc.Users.Get(r.Context(), id.ID.String())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.entity(w, r, http.StatusOK, hypermedia.UserResource, u)
}
