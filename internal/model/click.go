package model

import "time"

// ClickEvent is one immutable record of a successful redirect.
type ClickEvent struct {
	ID        string    `json:"id"`
	LinkID    string    `json:"link_id"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
}

// ClickMeta is the request metadata captured with a click.
type ClickMeta struct {
	UserAgent string
	Referrer  string
}

// ClickFilter selects the click events of one link inside [From, To].
// Zero times are open bounds.
type ClickFilter struct {
	LinkID string
	From   time.Time
	To     time.Time
}

// Match reports whether e satisfies the filter.
func (f ClickFilter) Match(e *ClickEvent) bool {
	if e.LinkID != f.LinkID {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}
