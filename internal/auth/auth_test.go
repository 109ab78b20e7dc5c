package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Totarae/linkgate/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestSignAndValidate(t *testing.T) {
	a := auth.New("test-secret")
	userID := "user123"
	signed := a.SignCookieValue(userID)

	parts := strings.SplitN(signed, ":", 2)
	assert.Len(t, parts, 2)
	assert.Equal(t, userID, parts[0])
	assert.Equal(t, a.SignCookieValue(userID), signed)
	assert.NotEqual(t, auth.New("other-secret").SignCookieValue(userID), signed)
}

func TestValidateUserID(t *testing.T) {
	a := auth.New("test-secret")
	userID := "valid-user"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: a.SignCookieValue(userID)})

	id, ok := a.ValidateUserID(req)
	assert.True(t, ok)
	assert.Equal(t, userID, id)
}

func TestValidateUserID_Invalid(t *testing.T) {
	a := auth.New("test-secret")

	for _, value := range []string{
		"someuser:bad-signature",
		"invalidformat",
		":" + strings.Repeat("0", 64),
		auth.New("other-secret").SignCookieValue("someuser"),
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: value})

		id, ok := a.ValidateUserID(req)
		assert.False(t, ok, value)
		assert.Empty(t, id)
	}

	id, ok := a.ValidateUserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestRequireOwner(t *testing.T) {
	a := auth.New("test-secret")
	var seen string
	h := a.RequireOwner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.OwnerFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: a.SignCookieValue("u1")})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", seen)
}
