// Package nav names the views the search experience can navigate to and maps them to paths.
package nav

import (
	"net/url"
	"path"
)

// View is a navigation target name.
type View string

const (
	ViewHome     View = "home"
	ViewResults  View = "searchresults"
	ViewDetail   View = "blogdetails"
	ViewProfile  View = "userprofile"
	ViewAuthor   View = "allusersprofiles"
	ViewTag      View = "tag"
	ViewRegister View = "register"
)

// Target is a view plus an opaque payload. Path is filled by Resolve for transports
// that navigate by URL.
type Target struct {
	View    View           `json:"view"`
	Payload map[string]any `json:"payload,omitempty"`
	Path    string         `json:"path,omitempty"`
}

// Navigator realizes a navigation request.
type Navigator interface {
	Navigate(t Target) error
}

// Results targets the full result view for a raw query.
func Results(query string) Target {
	return Resolve(Target{View: ViewResults, Payload: map[string]any{"searchData": query}})
}

// Detail targets the detail view of one post.
func Detail(id string, item any) Target {
	return Resolve(Target{View: ViewDetail, Payload: map[string]any{"id": id, "blogDetails": item}})
}

// Tag targets a tag listing.
func Tag(tag string) Target {
	return Resolve(Target{View: ViewTag, Payload: map[string]any{"tag": tag}})
}

// Resolve fills t.Path from its view and payload.
func Resolve(t Target) Target {
	switch t.View {
	case ViewResults:
		q, _ := t.Payload["searchData"].(string)
		t.Path = "/search?" + url.Values{"q": {q}}.Encode()
	case ViewDetail:
		id, _ := t.Payload["id"].(string)
		t.Path = path.Join("/blogs", url.PathEscape(id))
	case ViewProfile:
		t.Path = "/profile"
	case ViewAuthor:
		id, _ := t.Payload["id"].(string)
		v := url.Values{}
		if name, ok := t.Payload["author"].(string); ok && name != "" {
			v.Set("author", name)
		}
		t.Path = path.Join("/authors", url.PathEscape(id))
		if len(v) > 0 {
			t.Path += "?" + v.Encode()
		}
	case ViewTag:
		tag, _ := t.Payload["tag"].(string)
		t.Path = path.Join("/tags", url.PathEscape(tag))
	case ViewRegister:
		t.Path = "/register"
	default:
		t.Path = "/"
	}
	return t
}
