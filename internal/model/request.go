package model

import (
	"net/url"
	"strings"
)

const maxURLLength = 2048

// CreateLinkRequest is the input of link creation.
// Slug, Password and CustomMessage are optional; empty means absent.
type CreateLinkRequest struct {
	OwnerID        string `json:"-"`
	DestinationURL string `json:"destination_url"`
	Slug           string `json:"slug,omitempty"`
	Password       string `json:"password,omitempty"`
	CustomMessage  string `json:"custom_message,omitempty"`
}

// Validate trims the request and checks required fields.
// Slug syntax is checked by the code allocator.
func (r *CreateLinkRequest) Validate() error {
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.Slug = strings.TrimSpace(r.Slug)
	r.CustomMessage = strings.TrimSpace(r.CustomMessage)

	if r.OwnerID == "" {
		return &ValidationError{Field: "owner_id", Reason: "is required"}
	}
	dest, err := ValidateDestination(r.DestinationURL)
	if err != nil {
		return err
	}
	r.DestinationURL = dest
	return nil
}

// ValidateDestination returns the trimmed URL if it is an absolute http(s) URL.
func ValidateDestination(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Field: "destination_url", Reason: "is required"}
	}
	if len(raw) > maxURLLength {
		return "", &ValidationError{Field: "destination_url", Reason: "is too long"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{Field: "destination_url", Reason: "is not a valid URL"}
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", &ValidationError{Field: "destination_url", Reason: "must use http or https"}
	}
	if u.Host == "" {
		return "", &ValidationError{Field: "destination_url", Reason: "must have a host"}
	}
	return raw, nil
}
