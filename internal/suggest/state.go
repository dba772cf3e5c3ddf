// Package suggest holds the live autocomplete state and its keyboard state machine.
//
// The state is a plain value owned by one session. Reduce applies one Action and returns
// the next state plus the side effects the owner must carry out; it never performs I/O.
package suggest

import (
	"fmt"

	"github.com/hyperjump/scribe/internal/dispatch"
	"github.com/hyperjump/scribe/internal/models"
)

// MaxCandidates caps the suggestion list.
const MaxCandidates = 5

// NoSelection is the selection index when no candidate is highlighted.
const NoSelection = -1

// State is a named state of the suggestion dropdown.
type State int

const (
	// Idle means no text has been entered.
	Idle State = iota
	// Pending means a query is waiting for the debounce timer or its response.
	Pending
	// Open means candidates are available and the dropdown is visible.
	Open
	// Closed means the dropdown is hidden; the text may remain.
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON frames.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Idle, Pending, Open, Closed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown suggestion state %q", text)
}

// Session is the state of one live suggestion session.
type Session struct {
	Query      string
	Candidates []*models.SearchResultItem
	Selected   int
	State      State
	// Awaiting is the token of the query whose response may still update Candidates.
	Awaiting dispatch.Token
}

// NewSession returns an idle session with no selection.
func NewSession() Session {
	return Session{Selected: NoSelection, State: Idle}
}

// Visible reports whether the dropdown is shown.
func (s Session) Visible() bool {
	return s.State == Open
}

// Current returns the highlighted candidate, if any.
func (s Session) Current() (*models.SearchResultItem, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Candidates) {
		return nil, false
	}
	return s.Candidates[s.Selected], true
}

func (s *Session) clamp() {
	if s.Selected >= len(s.Candidates) {
		s.Selected = len(s.Candidates) - 1
	}
	if s.Selected < NoSelection {
		s.Selected = NoSelection
	}
}

func (s *Session) reset() {
	*s = NewSession()
}
