// Package storetest holds the behavioural tests every storage.Store
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) storage.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("InsertIfAbsent", func(t *testing.T) { testInsertIfAbsent(t, newStore(t)) })
	t.Run("InactiveCodeReuse", func(t *testing.T) { testInactiveCodeReuse(t, newStore(t)) })
	t.Run("ConcurrentInsert", func(t *testing.T) { testConcurrentInsert(t, newStore(t)) })
	t.Run("ConcurrentIncrement", func(t *testing.T) { testConcurrentIncrement(t, newStore(t)) })
	t.Run("QueryLinks", func(t *testing.T) { testQueryLinks(t, newStore(t)) })
	t.Run("Clicks", func(t *testing.T) { testClicks(t, newStore(t)) })
	t.Run("DeleteKeepsClicks", func(t *testing.T) { testDeleteKeepsClicks(t, newStore(t)) })
	t.Run("Password", func(t *testing.T) { testPassword(t, newStore(t)) })
	t.Run("RecordClick", func(t *testing.T) { testRecordClick(t, newStore(t)) })
}

// NewLink builds an active link for tests.
func NewLink(owner, code string, created time.Time) *model.Link {
	return &model.Link{
		ID:             uuid.NewString(),
		OwnerID:        owner,
		ShortCode:      code,
		DestinationURL: "https://example.com/" + code,
		Title:          "example",
		CreatedAt:      created.UTC().Truncate(time.Microsecond),
		Active:         true,
	}
}

func testInsertIfAbsent(t *testing.T, s storage.Store) {
	ctx := context.Background()
	now := time.Now()

	first := NewLink("u1", "promo", now)
	ok, err := s.InsertLinkIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)

	second := NewLink("u2", "promo", now)
	ok, err = s.InsertLinkIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetLink(ctx, second.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := s.GetLinkByCode(ctx, "promo")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "u1", got.OwnerID)
	assert.True(t, got.Active)

	_, err = s.GetLinkByCode(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetLink(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testInactiveCodeReuse(t *testing.T, s storage.Store) {
	ctx := context.Background()
	now := time.Now()

	old := NewLink("u1", "reuse", now.Add(-time.Hour))
	ok, err := s.InsertLinkIfAbsent(ctx, old)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.SetActive(ctx, old.ID, false))

	got, err := s.GetLinkByCode(ctx, "reuse")
	require.NoError(t, err)
	assert.False(t, got.Active)

	fresh := NewLink("u2", "reuse", now)
	ok, err = s.InsertLinkIfAbsent(ctx, fresh)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = s.GetLinkByCode(ctx, "reuse")
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, got.ID)

	err = s.SetActive(ctx, old.ID, true)
	assert.ErrorIs(t, err, model.ErrCollision)
	assert.ErrorIs(t, s.SetActive(ctx, uuid.NewString(), true), model.ErrNotFound)
}

func testConcurrentInsert(t *testing.T, s storage.Store) {
	ctx := context.Background()
	const n = 10

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := s.InsertLinkIfAbsent(ctx, NewLink(fmt.Sprintf("u%d", i), "race", time.Now()))
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func testConcurrentIncrement(t *testing.T, s storage.Store) {
	ctx := context.Background()
	l := NewLink("u1", "count", time.Now())
	ok, err := s.InsertLinkIfAbsent(ctx, l)
	require.NoError(t, err)
	require.True(t, ok)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.IncrementClicks(ctx, l.ID, 1))
		}()
	}
	wg.Wait()

	got, err := s.GetLink(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.ClickCount)
	assert.ErrorIs(t, s.IncrementClicks(ctx, uuid.NewString(), 1), model.ErrNotFound)
}

func testQueryLinks(t *testing.T, s storage.Store) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, code := range []string{"aaa111", "bbb222", "ccc333"} {
		_, err := s.InsertLinkIfAbsent(ctx, NewLink("owner", code, base.Add(time.Duration(i)*24*time.Hour)))
		require.NoError(t, err)
	}
	_, err := s.InsertLinkIfAbsent(ctx, NewLink("other", "ddd444", base))
	require.NoError(t, err)

	links, err := s.QueryLinks(ctx, model.LinkFilter{OwnerID: "owner"})
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "ccc333", links[0].ShortCode)
	assert.Equal(t, "aaa111", links[2].ShortCode)

	links, err = s.QueryLinks(ctx, model.LinkFilter{
		OwnerID:     "owner",
		CreatedFrom: base.Add(24 * time.Hour),
		CreatedTo:   base.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "bbb222", links[0].ShortCode)

	links, err = s.QueryLinks(ctx, model.LinkFilter{OwnerID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, links)

	require.NoError(t, s.UpdateDestination(ctx, links0ID(t, s, "owner", "aaa111"), "https://golang.org", "golang"))
	got, err := s.GetLinkByCode(ctx, "aaa111")
	require.NoError(t, err)
	assert.Equal(t, "https://golang.org", got.DestinationURL)
	assert.Equal(t, "golang", got.Title)
	assert.ErrorIs(t, s.UpdateDestination(ctx, uuid.NewString(), "https://x.org", "x"), model.ErrNotFound)
}

func links0ID(t *testing.T, s storage.Store, owner, code string) string {
	t.Helper()
	l, err := s.GetLinkByCode(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, owner, l.OwnerID)
	return l.ID
}

func testClicks(t *testing.T, s storage.Store) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	linkID := uuid.NewString()

	for _, off := range []time.Duration{48 * time.Hour, 0, 24 * time.Hour} {
		ev := &model.ClickEvent{LinkID: linkID, Timestamp: base.Add(off), UserAgent: "ua", Referrer: "ref"}
		require.NoError(t, s.AppendClick(ctx, ev))
		assert.NotEmpty(t, ev.ID)
	}
	require.NoError(t, s.AppendClick(ctx, &model.ClickEvent{LinkID: uuid.NewString(), Timestamp: base}))

	all, err := s.QueryClicks(ctx, model.ClickFilter{LinkID: linkID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Timestamp.Before(all[i].Timestamp))
	}
	assert.Equal(t, "ua", all[0].UserAgent)
	assert.Equal(t, "ref", all[0].Referrer)

	window, err := s.QueryClicks(ctx, model.ClickFilter{LinkID: linkID, From: base.Add(time.Hour), To: base.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.True(t, window[0].Timestamp.Equal(base.Add(24*time.Hour)))
}

func testDeleteKeepsClicks(t *testing.T, s storage.Store) {
	ctx := context.Background()
	l := NewLink("u1", "gone", time.Now())
	_, err := s.InsertLinkIfAbsent(ctx, l)
	require.NoError(t, err)
	require.NoError(t, s.AppendClick(ctx, &model.ClickEvent{LinkID: l.ID, Timestamp: time.Now().UTC()}))

	require.NoError(t, s.DeleteLink(ctx, l.ID))
	_, err = s.GetLink(ctx, l.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetLinkByCode(ctx, "gone")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.DeleteLink(ctx, l.ID), model.ErrNotFound)

	clicks, err := s.QueryClicks(ctx, model.ClickFilter{LinkID: l.ID})
	require.NoError(t, err)
	assert.Len(t, clicks, 1)

	ok, err := s.InsertLinkIfAbsent(ctx, NewLink("u2", "gone", time.Now()))
	require.NoError(t, err)
	assert.True(t, ok)
}

func testPassword(t *testing.T, s storage.Store) {
	ctx := context.Background()
	l := NewLink("u1", "secret", time.Now())
	l.Password = &model.Credential{Hash: []byte{1, 2, 3}, Salt: []byte{4, 5, 6}}
	l.CustomMessage = "ask the owner"
	_, err := s.InsertLinkIfAbsent(ctx, l)
	require.NoError(t, err)

	got, err := s.GetLinkByCode(ctx, "secret")
	require.NoError(t, err)
	require.NotNil(t, got.Password)
	assert.Equal(t, []byte{1, 2, 3}, got.Password.Hash)
	assert.Equal(t, []byte{4, 5, 6}, got.Password.Salt)
	assert.Equal(t, "ask the owner", got.CustomMessage)

	plain := NewLink("u1", "plain", time.Now())
	_, err = s.InsertLinkIfAbsent(ctx, plain)
	require.NoError(t, err)
	got, err = s.GetLink(ctx, plain.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Password)
}

func testRecordClick(t *testing.T, s storage.Store) {
	w, ok := s.(storage.ClickWriter)
	if !ok {
		t.Skip("store does not implement storage.ClickWriter")
	}
	ctx := context.Background()
	l := NewLink("u1", "rec", time.Now())
	ok, err := s.InsertLinkIfAbsent(ctx, l)
	require.NoError(t, err)
	require.True(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.RecordClick(ctx, &model.ClickEvent{LinkID: l.ID, Timestamp: time.Now().UTC()}))
		}()
	}
	wg.Wait()

	got, err := s.GetLink(ctx, l.ID)
	require.NoError(t, err)
	clicks, err := s.QueryClicks(ctx, model.ClickFilter{LinkID: l.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.ClickCount)
	assert.Len(t, clicks, 10)

	missing := uuid.NewString()
	assert.ErrorIs(t, w.RecordClick(ctx, &model.ClickEvent{LinkID: missing, Timestamp: time.Now().UTC()}), model.ErrNotFound)
	clicks, err = s.QueryClicks(ctx, model.ClickFilter{LinkID: missing})
	require.NoError(t, err)
	assert.Empty(t, clicks, "nothing is appended for an unknown link")
}
