package redirect_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/password"
	"github.com/Totarae/linkgate/internal/redirect"
	"github.com/Totarae/linkgate/internal/storage/memory"
	"github.com/Totarae/linkgate/internal/storage/mocks"
	"github.com/Totarae/linkgate/internal/storage/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recorded struct {
	mu    sync.Mutex
	links []string
}

func (r *recorded) RecordAsync(linkID string, _ model.ClickMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, linkID)
}

type denyAll struct{ calls int }

func (d *denyAll) Allow(string) bool {
	d.calls++
	return false
}

func ptr(s string) *string { return &s }

type fixture struct {
	store    *memory.Store
	gate     *password.Gate
	recorder *recorded
	machine  *redirect.Machine
}

func newFixture(t *testing.T, opts ...redirect.Option) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.New(),
		gate:     password.NewGate(password.Params{Time: 1, MemoryKiB: 64, Threads: 1}),
		recorder: &recorded{},
	}
	f.machine = redirect.NewMachine(f.store, f.gate, f.recorder, opts...)
	return f
}

func (f *fixture) add(t *testing.T, code, pw string) *model.Link {
	t.Helper()
	l := storetest.NewLink("u1", code, time.Now())
	if pw != "" {
		c, err := f.gate.Protect(pw)
		require.NoError(t, err)
		l.Password = c
		l.CustomMessage = "ask the owner"
	}
	ok, err := f.store.InsertLinkIfAbsent(context.Background(), l)
	require.NoError(t, err)
	require.True(t, ok)
	return l
}

func TestResolve_Open(t *testing.T) {
	f := newFixture(t)
	l := f.add(t, "open", "")

	out, err := f.machine.Resolve(context.Background(), redirect.Request{ShortCode: "open"})
	require.NoError(t, err)
	assert.Equal(t, redirect.Redirect, out.State)
	assert.Equal(t, l.DestinationURL, out.DestinationURL)
	assert.Equal(t, []redirect.State{redirect.Lookup, redirect.Redirect}, out.Path)
	assert.Equal(t, []string{l.ID}, f.recorder.links)
}

func TestResolve_NotFound(t *testing.T) {
	f := newFixture(t)

	out, err := f.machine.Resolve(context.Background(), redirect.Request{ShortCode: "doesnotexist"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, redirect.NotFound, out.State)

	_, err = f.machine.Resolve(context.Background(), redirect.Request{})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, f.recorder.links)
}

func TestResolve_Inactive(t *testing.T) {
	f := newFixture(t)
	l := f.add(t, "gone", "secret")
	require.NoError(t, f.store.SetActive(context.Background(), l.ID, false))

	// Inactive wins over the password challenge.
	out, err := f.machine.Resolve(context.Background(), redirect.Request{ShortCode: "gone", Password: ptr("secret")})
	assert.ErrorIs(t, err, model.ErrInactiveLink)
	assert.Equal(t, redirect.Inactive, out.State)
	assert.Empty(t, f.recorder.links)
}

func TestResolve_PasswordFlow(t *testing.T) {
	f := newFixture(t)
	l := f.add(t, "locked", "abc123")
	ctx := context.Background()

	out, err := f.machine.Resolve(ctx, redirect.Request{ShortCode: "locked"})
	var required *model.PasswordRequiredError
	require.ErrorAs(t, err, &required)
	assert.Equal(t, "ask the owner", required.CustomMessage)
	assert.Equal(t, redirect.AwaitingPassword, out.State)

	_, err = f.machine.Resolve(ctx, redirect.Request{ShortCode: "locked", Password: ptr("")})
	assert.ErrorIs(t, err, model.ErrPasswordRequired)

	out, err = f.machine.Resolve(ctx, redirect.Request{ShortCode: "locked", Password: ptr("ABC123")})
	assert.ErrorIs(t, err, model.ErrPasswordRejected)
	assert.Equal(t, redirect.PasswordRejected, out.State)
	assert.Empty(t, out.DestinationURL)

	// Re-entrant: a later attempt with the right password succeeds.
	out, err = f.machine.Resolve(ctx, redirect.Request{ShortCode: "locked", Password: ptr("abc123")})
	require.NoError(t, err)
	assert.Equal(t, []redirect.State{redirect.Lookup, redirect.AwaitingPassword, redirect.Verifying, redirect.Redirect}, out.Path)
	assert.Equal(t, l.DestinationURL, out.DestinationURL)
	assert.Equal(t, []string{l.ID}, f.recorder.links)
}

func TestResolve_RateLimited(t *testing.T) {
	limiter := &denyAll{}
	f := newFixture(t, redirect.WithLimiter(limiter))
	f.add(t, "locked", "pw")
	f.add(t, "open", "")
	ctx := context.Background()

	out, err := f.machine.Resolve(ctx, redirect.Request{ShortCode: "locked", Password: ptr("pw"), Client: "10.0.0.1"})
	assert.ErrorIs(t, err, model.ErrRateLimited)
	assert.Equal(t, redirect.AwaitingPassword, out.State)

	// Unprotected links and challenges without a password skip the limiter.
	_, err = f.machine.Resolve(ctx, redirect.Request{ShortCode: "open"})
	require.NoError(t, err)
	_, err = f.machine.Resolve(ctx, redirect.Request{ShortCode: "locked"})
	assert.ErrorIs(t, err, model.ErrPasswordRequired)
	assert.Equal(t, 1, limiter.calls)
}

func TestResolve_StoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	rec := &recorded{}
	m := redirect.NewMachine(store, password.NewGate(password.Params{}), rec)

	store.EXPECT().GetLinkByCode(gomock.Any(), "abc").Return(nil, model.Unavailable("get link by code", errors.New("eof")))
	out, err := m.Resolve(context.Background(), redirect.Request{ShortCode: "abc"})
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Equal(t, redirect.Lookup, out.State)
	assert.Empty(t, rec.links)
}
