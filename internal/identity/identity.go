// Package identity reads the current user from the local identity store and decides where
// an author link leads.
package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/nav"
)

// CookieName is the cookie holding the JSON-encoded identity.
const CookieName = "blog-user"

// ErrNoIdentity is returned when no valid identity is present.
var ErrNoIdentity = errors.New("no identity")

type ctxKey struct{}

// FromRequest decodes the identity cookie of r.
func FromRequest(r *http.Request) (*models.Identity, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoIdentity
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}
	var id models.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoIdentity, err)
	}
	if !id.Valid() {
		return nil, ErrNoIdentity
	}
	return &id, nil
}

// New creates an identity with a fresh ID for username.
func New(username, email string) (*models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrNoIdentity)
	}
	return &models.Identity{ID: uuid.NewString(), Username: username, Email: strings.TrimSpace(email)}, nil
}

// SetCookie stores id on the response.
func SetCookie(w http.ResponseWriter, id *models.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().AddDate(1, 0, 0),
	})
	return nil
}

// ClearCookie removes the identity cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
}

// Require redirects requests without a valid identity to the registration view and stores
// the identity in the request context otherwise.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := FromRequest(r)
		if err != nil {
			target := nav.Resolve(nav.Target{View: nav.ViewRegister})
			http.Redirect(w, r, target.Path, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

// WithContext returns ctx carrying id.
func WithContext(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by Require, or nil.
func FromContext(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(ctxKey{}).(*models.Identity)
	return id
}

// AuthorTarget decides where the author link of item leads for current.
// The current user's own posts link to their profile; other authors link to the author view.
// Without a valid identity the link leads to registration.
func AuthorTarget(current *models.Identity, item *models.SearchResultItem) nav.Target {
	if !current.Valid() {
		return nav.Resolve(nav.Target{View: nav.ViewRegister})
	}
	if item.AuthorID == current.ID {
		return nav.Resolve(nav.Target{View: nav.ViewProfile})
	}
	return nav.Resolve(nav.Target{
		View: nav.ViewAuthor,
		Payload: map[string]any{
			"id":            item.AuthorID,
			"currentUserId": current.ID,
			"author":        item.Author,
		},
	})
}
