package dispatch

import "sync/atomic"

// Token tags an outbound request. Zero is never issued.
type Token uint64

// Lane hands out monotonically increasing request tokens for one kind of request.
// Only a response carrying the lane's most recent token may update state.
// Suggestion and full-search requests use separate lanes and never interfere.
type Lane struct {
	seq atomic.Uint64
}

// Issue returns a new token and makes every earlier token stale.
func (l *Lane) Issue() Token {
	return Token(l.seq.Add(1))
}

// Invalidate makes every issued token stale without issuing a new one.
func (l *Lane) Invalidate() {
	l.seq.Add(1)
}

// Current reports whether t is the most recently issued token.
func (l *Lane) Current(t Token) bool {
	return t != 0 && uint64(t) == l.seq.Load()
}
