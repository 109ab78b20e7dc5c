package model

import (
	"net/url"
	"strings"
	"time"
)

// Link is a shortened destination owned by a single principal.
type Link struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"owner_id"`
	ShortCode      string      `json:"short_code"`
	DestinationURL string      `json:"destination_url"`
	Title          string      `json:"title"`
	Password       *Credential `json:"-"`
	CustomMessage  string      `json:"custom_message,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	ClickCount     int64       `json:"click_count"`
	Active         bool        `json:"active"`
}

// Protected reports whether resolving the link requires a password.
func (l *Link) Protected() bool {
	return l.Password != nil
}

// Credential is the stored, one-way form of a link password.
type Credential struct {
	Hash []byte
	Salt []byte
}

// LinkFilter selects links of one owner, optionally bounded by creation time.
// Zero times are open bounds.
type LinkFilter struct {
	OwnerID     string
	CreatedFrom time.Time
	CreatedTo   time.Time
}

// Match reports whether l satisfies the filter.
func (f LinkFilter) Match(l *Link) bool {
	if f.OwnerID != "" && l.OwnerID != f.OwnerID {
		return false
	}
	if !f.CreatedFrom.IsZero() && l.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && !l.CreatedAt.Before(f.CreatedTo) {
		return false
	}
	return true
}

// TitleFromURL derives a short display title from the destination host,
// e.g. "https://www.example.com/x" -> "example".
func TitleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "Link"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return "Link"
	}
	return label
}
