package suggest

import (
	"github.com/hyperjump/scribe/internal/dispatch"
	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/nav"
)

// Action is one input to Reduce.
type Action interface {
	action()
}

// Input is a keystroke carrying the full current text of the search box.
type Input struct{ Text string }

// Issued reports that the dispatcher sent Query tagged with Token.
type Issued struct {
	Query string
	Token dispatch.Token
}

// Received carries the remote response for Token.
type Received struct {
	Token dispatch.Token
	Items []*models.SearchResultItem
}

// Failed reports that the fetch for Token failed.
type Failed struct {
	Token dispatch.Token
	Err   error
}

// Key is a navigation key press.
type Key struct{ Code KeyCode }

// ClickOutside is a click outside the control's bounding region.
type ClickOutside struct{}

// ClickCandidate is a click on the candidate at Index.
type ClickCandidate struct{ Index int }

func (Input) action()          {}
func (Issued) action()         {}
func (Received) action()       {}
func (Failed) action()         {}
func (Key) action()            {}
func (ClickOutside) action()   {}
func (ClickCandidate) action() {}

// KeyCode names the keys the dropdown reacts to.
type KeyCode string

const (
	ArrowDown KeyCode = "ArrowDown"
	ArrowUp   KeyCode = "ArrowUp"
	Enter     KeyCode = "Enter"
	Escape    KeyCode = "Escape"
)

// Effect is a side effect the session owner performs after a transition.
type Effect interface {
	effect()
}

// Dispatch asks the owner to hand the text to the debounced dispatcher.
type Dispatch struct{ Text string }

// CancelPending asks the owner to drop any scheduled or in-flight suggestion query.
type CancelPending struct{}

// Navigate asks the owner to move to another view.
type Navigate struct{ Target nav.Target }

func (Dispatch) effect()      {}
func (CancelPending) effect() {}
func (Navigate) effect()      {}
