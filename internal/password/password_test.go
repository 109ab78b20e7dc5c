package password_test

import (
	"testing"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap parameters keep the tests fast.
var testParams = password.Params{Time: 1, MemoryKiB: 64, Threads: 1}

func TestProtectVerify(t *testing.T) {
	g := password.NewGate(testParams)

	c, err := g.Protect("abc123")
	require.NoError(t, err)
	assert.Len(t, c.Salt, 16)
	assert.Len(t, c.Hash, 32)
	assert.NotContains(t, string(c.Hash), "abc123")

	assert.True(t, g.Verify("abc123", c))
	assert.False(t, g.Verify("ABC123", c))
	assert.False(t, g.Verify("", c))
}

func TestVerify_SingleCharacterMutation(t *testing.T) {
	g := password.NewGate(testParams)
	raw := "s3cret!"
	c, err := g.Protect(raw)
	require.NoError(t, err)

	for i := range raw {
		b := []byte(raw)
		b[i] ^= 0x01
		assert.False(t, g.Verify(string(b), c), "mutation at %d", i)
	}
	assert.False(t, g.Verify(raw+"x", c))
	assert.False(t, g.Verify(raw[:len(raw)-1], c))
}

func TestProtect_SaltPerCall(t *testing.T) {
	g := password.NewGate(testParams)
	a, err := g.Protect("same")
	require.NoError(t, err)
	b, err := g.Protect("same")
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestProtect_Empty(t *testing.T) {
	_, err := password.NewGate(testParams).Protect("")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestVerify_NoCredential(t *testing.T) {
	g := password.NewGate(testParams)
	assert.False(t, g.Verify("x", nil))
	assert.False(t, g.Verify("x", &model.Credential{}))
}

func TestNewGate_Defaults(t *testing.T) {
	g := password.NewGate(password.Params{})
	c, err := g.Protect("pw")
	require.NoError(t, err)
	assert.Len(t, c.Hash, int(password.DefaultParams.KeyLen))
	assert.True(t, g.Verify("pw", c))
}
