// Package codegen draws short codes and claims them in the store.
package codegen

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"

	"github.com/Totarae/linkgate/internal/model"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// CodeLength is the length of generated codes.
	CodeLength = 6
	// MaxAttempts bounds the number of random codes tried per allocation.
	MaxAttempts = 5
)

var (
	base   = big.NewInt(int64(len(alphabet)))
	slugRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)
	codeRe = regexp.MustCompile(fmt.Sprintf(`^[A-Za-z0-9]{%d}$`, CodeLength))
)

// ClaimFunc atomically reserves code. It reports false when the code is
// already held by an active link.
type ClaimFunc func(ctx context.Context, code string) (bool, error)

// Allocator turns an optional requested slug into a claimed short code.
type Allocator struct {
	random      io.Reader
	maxAttempts int
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithRandom replaces crypto/rand as the entropy source. Intended for tests.
func WithRandom(r io.Reader) Option {
	return func(a *Allocator) { a.random = r }
}

// WithMaxAttempts overrides MaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{random: rand.Reader, maxAttempts: MaxAttempts}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate claims requestedSlug, or a random code when it is empty.
//
// A requested slug is claimed exactly once and a lost claim is
// model.ErrCollision. Random codes are redrawn on every lost claim until
// the attempt bound, after which model.ErrExhaustedRetries is returned.
func (a *Allocator) Allocate(ctx context.Context, requestedSlug string, claim ClaimFunc) (string, error) {
	if requestedSlug != "" {
		if !ValidSlug(requestedSlug) {
			return "", &model.ValidationError{Field: "slug", Reason: "must be 3-64 characters of letters, digits, '-' or '_'"}
		}
		ok, err := claim(ctx, requestedSlug)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", model.ErrCollision
		}
		return requestedSlug, nil
	}

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		code, err := a.draw(CodeLength)
		if err != nil {
			return "", fmt.Errorf("draw code: %w", err)
		}
		ok, err := claim(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", model.ErrExhaustedRetries
}

func (a *Allocator) draw(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(a.random, base)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

// Random returns n characters drawn uniformly from [A-Za-z0-9] using crypto/rand.
func Random(n int) (string, error) {
	return NewAllocator().draw(n)
}

// ValidSlug reports whether s may be requested as a custom code.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// ValidCode reports whether s has the shape of a generated code.
func ValidCode(s string) bool {
	return codeRe.MatchString(s)
}
