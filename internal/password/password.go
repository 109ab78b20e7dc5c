// Package password derives and checks the credentials that gate protected links.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/Totarae/linkgate/internal/model"
	"golang.org/x/crypto/argon2"
)

const saltLen = 16

// Params are the Argon2id cost parameters.
type Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

// DefaultParams follow the OWASP minimum for Argon2id.
var DefaultParams = Params{Time: 2, MemoryKiB: 19 * 1024, Threads: 1, KeyLen: 32}

func (p Params) withDefaults() Params {
	if p.Time == 0 {
		p.Time = DefaultParams.Time
	}
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultParams.MemoryKiB
	}
	if p.Threads == 0 {
		p.Threads = DefaultParams.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = DefaultParams.KeyLen
	}
	return p
}

// Gate hashes link passwords with Argon2id. A Gate must verify with the
// parameters it protected with.
type Gate struct {
	params Params
}

// NewGate returns a Gate. Zero fields of p take their DefaultParams value.
func NewGate(p Params) *Gate {
	return &Gate{params: p.withDefaults()}
}

// Protect derives a credential from raw with a fresh random salt.
// The raw password is not retained.
func (g *Gate) Protect(raw string) (*model.Credential, error) {
	if raw == "" {
		return nil, &model.ValidationError{Field: "password", Reason: "must not be empty"}
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	return &model.Credential{Hash: g.derive(raw, salt), Salt: salt}, nil
}

// Verify reports whether raw matches c, comparing in constant time.
func (g *Gate) Verify(raw string, c *model.Credential) bool {
	if c == nil || len(c.Hash) == 0 {
		return false
	}
	got := g.derive(raw, c.Salt)
	return subtle.ConstantTimeCompare(got, c.Hash) == 1
}

func (g *Gate) derive(raw string, salt []byte) []byte {
	p := g.params
	return argon2.IDKey([]byte(raw), salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
}
