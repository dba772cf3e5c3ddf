package suggest

import (
	"strings"

	"github.com/hyperjump/scribe/internal/models"
	"github.com/hyperjump/scribe/internal/nav"
)

// event classifies an Action for the transition table.
type event int

const (
	evText event = iota
	evBlank
	evResults
	evNoResults
	evFailed
	evDismiss
	evCommit
)

type edge struct {
	from State
	on   event
}

// transitions lists every state change. Pairs missing from the table leave the state unchanged.
var transitions = map[edge]State{
	{Idle, evText}:  Pending,
	{Idle, evBlank}: Idle,

	{Pending, evText}:      Pending,
	{Pending, evBlank}:     Idle,
	{Pending, evResults}:   Open,
	{Pending, evNoResults}: Closed,
	{Pending, evFailed}:    Closed,
	{Pending, evDismiss}:   Closed,
	{Pending, evCommit}:    Idle,

	{Open, evText}:    Pending,
	{Open, evBlank}:   Idle,
	{Open, evDismiss}: Closed,
	{Open, evCommit}:  Idle,

	{Closed, evText}:      Pending,
	{Closed, evBlank}:     Idle,
	{Closed, evResults}:   Closed,
	{Closed, evNoResults}: Closed,
	{Closed, evFailed}:    Closed,
	{Closed, evCommit}:    Idle,
}

// next returns the state reached from s on ev and whether the table defines that edge.
func next(s State, ev event) (State, bool) {
	to, ok := transitions[edge{s, ev}]
	return to, ok
}

// Reduce applies a to s and returns the new state and the effects to perform.
func Reduce(s Session, a Action) (Session, []Effect) {
	switch a := a.(type) {
	case Input:
		return onInput(s, a.Text)
	case Issued:
		if s.State == Pending && a.Query == s.Query {
			s.Awaiting = a.Token
		}
		return s, nil
	case Received:
		return onReceived(s, a)
	case Failed:
		if a.Token == 0 || a.Token != s.Awaiting {
			return s, nil
		}
		s.Awaiting = 0
		s.Candidates = nil
		s.Selected = NoSelection
		if to, ok := next(s.State, evFailed); ok {
			s.State = to
		}
		return s, nil
	case Key:
		return onKey(s, a.Code)
	case ClickOutside:
		if to, ok := next(s.State, evDismiss); ok {
			s.State = to
		}
		return s, nil
	case ClickCandidate:
		if a.Index < 0 || a.Index >= len(s.Candidates) {
			return s, nil
		}
		s.Selected = a.Index
		return commitSelected(s)
	}
	return s, nil
}

func onInput(s Session, text string) (Session, []Effect) {
	s.Query = text
	s.Selected = NoSelection
	s.Awaiting = 0
	if strings.TrimSpace(text) == "" {
		s.Candidates = nil
		if to, ok := next(s.State, evBlank); ok {
			s.State = to
		}
		return s, []Effect{CancelPending{}}
	}
	if to, ok := next(s.State, evText); ok {
		s.State = to
	}
	return s, []Effect{Dispatch{Text: text}}
}

func onReceived(s Session, a Received) (Session, []Effect) {
	if a.Token == 0 || a.Token != s.Awaiting {
		return s, nil
	}
	s.Awaiting = 0
	items := make([]*models.SearchResultItem, 0, MaxCandidates)
	for _, it := range a.Items {
		if it == nil {
			continue
		}
		items = append(items, it)
		if len(items) == MaxCandidates {
			break
		}
	}
	s.Candidates = items
	s.clamp()
	ev := evResults
	if len(items) == 0 {
		ev = evNoResults
	}
	if to, ok := next(s.State, ev); ok {
		s.State = to
	}
	return s, nil
}

func onKey(s Session, code KeyCode) (Session, []Effect) {
	switch code {
	case ArrowDown:
		if len(s.Candidates) > 0 && s.Selected < len(s.Candidates)-1 {
			s.Selected++
		}
	case ArrowUp:
		if s.Selected > NoSelection {
			s.Selected--
		}
	case Enter:
		if s.Selected > NoSelection {
			return commitSelected(s)
		}
		return commitQuery(s)
	case Escape:
		if to, ok := next(s.State, evDismiss); ok {
			s.State = to
		}
	}
	return s, nil
}

func commitSelected(s Session) (Session, []Effect) {
	item, ok := s.Current()
	if !ok {
		return s, nil
	}
	s.reset()
	return s, []Effect{CancelPending{}, Navigate{Target: nav.Detail(item.ID, item)}}
}

func commitQuery(s Session) (Session, []Effect) {
	if strings.TrimSpace(s.Query) == "" {
		return s, nil
	}
	query := s.Query
	s.reset()
	return s, []Effect{CancelPending{}, Navigate{Target: nav.Results(query)}}
}
