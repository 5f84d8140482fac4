package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-care-nosql/internal/application/auth"
	"github.com/go-care-nosql/internal/domain"
	"github.com/go-care-nosql/internal/infrastructure/google"
	pkgtoken "github.com/go-care-nosql/internal/pkg/token"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

type googleOAuthFlow interface {
	AuthCodeURL(state string) string
	UserInfo(ctx context.Context, code string) (*google.UserInfo, error)
}

// GoogleOAuthHandler serves the browser redirect login: consent at Google,
// then back to the callback, then on to the frontend.
type GoogleOAuthHandler struct {
	svc         auth.Service
	oauth       googleOAuthFlow
	frontendURL string
}

func NewGoogleOAuthHandler(svc auth.Service, oauth googleOAuthFlow, frontendURL string) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{svc: svc, oauth: oauth, frontendURL: frontendURL}
}

// Start sends the browser to Google with a state value pinned in a cookie.
func (h *GoogleOAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := pkgtoken.NewState()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(oauthStateTTL / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback finishes the flow. New users are created as verified patients;
// the browser lands on the frontend with name, email and photo in the query.
func (h *GoogleOAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/google", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}
	info, err := h.oauth.UserInfo(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	name := info.Name
	if name == "" {
		name = info.Email
	}
	res, err := h.svc.GoogleLogin(r.Context(), domain.GoogleLoginRequest{
		Name:  name,
		Email: info.Email,
		Photo: info.Picture,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	target, err := url.Parse(h.frontendURL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	q := target.Query()
	q.Set("name", res.Account.Name)
	q.Set("email", res.Account.Email)
	q.Set("photo", res.Account.Photo)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}
