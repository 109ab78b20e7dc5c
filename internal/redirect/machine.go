// Package redirect resolves short codes to destinations, running the
// password challenge for protected links.
package redirect

import (
	"context"
	"errors"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
)

// State is a step of a resolution.
type State int

const (
	Lookup State = iota
	NotFound
	Inactive
	AwaitingPassword
	Verifying
	PasswordRejected
	Redirect
)

var stateNames = [...]string{
	Lookup:           "LOOKUP",
	NotFound:         "NOT_FOUND",
	Inactive:         "INACTIVE",
	AwaitingPassword: "AWAITING_PASSWORD",
	Verifying:        "VERIFYING",
	PasswordRejected: "PASSWORD_REJECTED",
	Redirect:         "REDIRECT",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows s within one
// resolution. PasswordRejected is terminal for the attempt; the caller may
// start a new one.
func (s State) Terminal() bool {
	switch s {
	case NotFound, Inactive, PasswordRejected, Redirect:
		return true
	}
	return false
}

// Verifier checks a raw password against a stored credential.
type Verifier interface {
	Verify(raw string, c *model.Credential) bool
}

// ClickRecorder is notified of every successful redirect. It must not block.
type ClickRecorder interface {
	RecordAsync(linkID string, meta model.ClickMeta)
}

// Limiter throttles password attempts. Allow consumes one attempt for key.
type Limiter interface {
	Allow(key string) bool
}

// Request is one resolution attempt. A nil or empty Password means none
// was supplied. Client identifies the caller for rate limiting.
type Request struct {
	ShortCode string
	Password  *string
	Client    string
	Meta      model.ClickMeta
}

// Outcome is where a resolution ended. Path lists every state visited.
type Outcome struct {
	State          State
	DestinationURL string
	LinkID         string
	Path           []State
}

func (o *Outcome) enter(s State) {
	o.State = s
	o.Path = append(o.Path, s)
}

// Machine runs resolutions against a store.
type Machine struct {
	store    storage.Store
	verifier Verifier
	recorder ClickRecorder
	limiter  Limiter
}

// Option configures a Machine.
type Option func(*Machine)

// WithLimiter throttles password verification per client and code.
func WithLimiter(l Limiter) Option {
	return func(m *Machine) { m.limiter = l }
}

func NewMachine(store storage.Store, verifier Verifier, recorder ClickRecorder, opts ...Option) *Machine {
	m := &Machine{store: store, verifier: verifier, recorder: recorder}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve runs one resolution. The returned Outcome is never nil. The error
// is nil only when the outcome state is Redirect:
//
//	NotFound          model.ErrNotFound
//	Inactive          model.ErrInactiveLink
//	AwaitingPassword  *model.PasswordRequiredError
//	PasswordRejected  model.ErrPasswordRejected
//	AwaitingPassword  model.ErrRateLimited, when the limiter refuses
//
// Store failures leave the outcome in Lookup.
func (m *Machine) Resolve(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{}
	out.enter(Lookup)

	if req.ShortCode == "" {
		out.enter(NotFound)
		return out, model.ErrNotFound
	}
	link, err := m.store.GetLinkByCode(ctx, req.ShortCode)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		out.enter(NotFound)
		return out, model.ErrNotFound
	default:
		return out, err
	}
	out.LinkID = link.ID

	if !link.Active {
		out.enter(Inactive)
		return out, model.ErrInactiveLink
	}

	if link.Protected() {
		out.enter(AwaitingPassword)
		if req.Password == nil || *req.Password == "" {
			return out, &model.PasswordRequiredError{CustomMessage: link.CustomMessage}
		}
		if m.limiter != nil && !m.limiter.Allow(req.Client+"|"+link.ShortCode) {
			return out, model.ErrRateLimited
		}
		out.enter(Verifying)
		if !m.verifier.Verify(*req.Password, link.Password) {
			out.enter(PasswordRejected)
			return out, model.ErrPasswordRejected
		}
	}

	out.enter(Redirect)
	out.DestinationURL = link.DestinationURL
	if m.recorder != nil {
		m.recorder.RecordAsync(link.ID, req.Meta)
	}
	return out, nil
}
