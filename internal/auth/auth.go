// Package auth reads the owner identity from the signed auth_token cookie.
// Issuing the cookie belongs to the identity provider in front of the service.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

const CookieName = "auth_token"

type ctxKey struct{}

type Auth struct {
	SecretKey string
}

func New(secret string) *Auth {
	return &Auth{SecretKey: secret}
}

// Создать подпись
func (a *Auth) sign(ownerID string) []byte {
	mac := hmac.New(sha256.New, []byte(a.SecretKey))
	mac.Write([]byte(ownerID))
	return mac.Sum(nil)
}

// ValidateUserID returns the owner named by a correctly signed cookie of
// the form "ownerID:hex(hmac)".
func (a *Auth) ValidateUserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	ownerID, sig, ok := strings.Cut(cookie.Value, ":")
	if !ok || ownerID == "" {
		return "", false
	}
	got, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(got, a.sign(ownerID)) {
		return "", false
	}
	return ownerID, true
}

// SignCookieValue builds a cookie value for ownerID. Used by tests and linkctl.
func (a *Auth) SignCookieValue(ownerID string) string {
	return fmt.Sprintf("%s:%s", ownerID, hex.EncodeToString(a.sign(ownerID)))
}

// RequireOwner rejects requests without a valid cookie with 401 and stores
// the owner in the request context otherwise.
func (a *Auth) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := a.ValidateUserID(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
	})
}

func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ownerID)
}

// OwnerFrom returns the owner stored by RequireOwner.
func OwnerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
