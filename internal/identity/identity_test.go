package identity

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/nav"
)

func TestCookieRoundTrip(t *testing.T) {
	id, err := New(" ana ", "ana@example.com")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if id.Username != "ana" || id.ID == "" {
		t.Fatalf("New() = %+v", id)
	}

	rec := httptest.NewRecorder()
	if err := SetCookie(rec, id); err != nil {
		t.Fatalf("SetCookie() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	got, err := FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest() error = %v", err)
	}
	if *got != *id {
		t.Errorf("FromRequest() = %+v, want %+v", got, id)
	}
}

func TestFromRequestInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"missing", ""},
		{"not base64", "%%%"},
		{"not json", "bm90IGpzb24"},
		{"no id", "eyJ1c2VybmFtZSI6ImFuYSJ9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.value != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.value})
			}
			if _, err := FromRequest(req); !errors.Is(err, ErrNoIdentity) {
				t.Errorf("FromRequest() error = %v, want ErrNoIdentity", err)
			}
		})
	}
}

func TestNewRequiresUsername(t *testing.T) {
	if _, err := New("  ", ""); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("New() error = %v, want ErrNoIdentity", err)
	}
}

func TestRequire(t *testing.T) {
	h := Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			t.Error("identity missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=x", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/register" {
		t.Errorf("without identity: code %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	id, _ := New("ana", "")
	cookieRec := httptest.NewRecorder()
	_ = SetCookie(cookieRec, id)
	req := httptest.NewRequest(http.MethodGet, "/search?q=x", nil)
	req.AddCookie(cookieRec.Result().Cookies()[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("with identity: code %d", rec.Code)
	}
}

func TestAuthorTarget(t *testing.T) {
	me := &models.Identity{ID: "u1", Username: "ana"}
	tests := []struct {
		name     string
		current  *models.Identity
		item     *models.SearchResultItem
		wantView nav.View
		wantPath string
	}{
		{"self", me, &models.SearchResultItem{AuthorID: "u1", Author: "ana"}, nav.ViewProfile, "/profile"},
		{"other", me, &models.SearchResultItem{AuthorID: "u2", Author: "Ben"}, nav.ViewAuthor, "/authors/u2?author=Ben"},
		{"anonymous", nil, &models.SearchResultItem{AuthorID: "u2"}, nav.ViewRegister, "/register"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AuthorTarget(tt.current, tt.item)
			if got.View != tt.wantView || got.Path != tt.wantPath {
				t.Errorf("AuthorTarget() = %s %s, want %s %s", got.View, got.Path, tt.wantView, tt.wantPath)
			}
		})
	}

	other := AuthorTarget(me, &models.SearchResultItem{AuthorID: "u2", Author: "Ben"})
	if other.Payload["currentUserId"] != "u1" || other.Payload["id"] != "u2" || other.Payload["author"] != "Ben" {
		t.Errorf("payload = %v", other.Payload)
	}
}
