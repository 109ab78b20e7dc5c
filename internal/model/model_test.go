package model_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/path", "example"},
		{"http://docs.golang.org", "docs"},
		{"https://localhost:8080/x", "localhost"},
		{"not a url", "Link"},
		{"", "Link"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, model.TitleFromURL(tt.in), tt.in)
	}
}

func TestCreateLinkRequest_Validate(t *testing.T) {
	req := &model.CreateLinkRequest{
		OwnerID:        " u1 ",
		DestinationURL: "  https://example.com  ",
		Slug:           " promo ",
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "u1", req.OwnerID)
	assert.Equal(t, "https://example.com", req.DestinationURL)
	assert.Equal(t, "promo", req.Slug)

	bad := []model.CreateLinkRequest{
		{OwnerID: "u1"},
		{OwnerID: "u1", DestinationURL: "ftp://example.com"},
		{OwnerID: "u1", DestinationURL: "javascript:alert(1)"},
		{OwnerID: "u1", DestinationURL: "https://"},
		{DestinationURL: "https://example.com"},
	}
	for _, r := range bad {
		err := r.Validate()
		assert.ErrorIs(t, err, model.ErrValidation, "%+v", r)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	wrapped := fmt.Errorf("create: %w", &model.ValidationError{Field: "slug", Reason: "is invalid"})
	assert.ErrorIs(t, wrapped, model.ErrValidation)

	var pr error = &model.PasswordRequiredError{CustomMessage: "ask Bob"}
	assert.ErrorIs(t, pr, model.ErrPasswordRequired)
	var target *model.PasswordRequiredError
	require.True(t, errors.As(pr, &target))
	assert.Equal(t, "ask Bob", target.CustomMessage)

	cause := errors.New("connection refused")
	su := model.Unavailable("get link", cause)
	assert.ErrorIs(t, su, model.ErrStoreUnavailable)
	assert.ErrorIs(t, su, cause)
	assert.Nil(t, model.Unavailable("noop", nil))
}

func TestFilters(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	l := &model.Link{OwnerID: "u1", CreatedAt: now}

	assert.True(t, model.LinkFilter{OwnerID: "u1"}.Match(l))
	assert.False(t, model.LinkFilter{OwnerID: "u2"}.Match(l))
	assert.True(t, model.LinkFilter{OwnerID: "u1", CreatedFrom: now}.Match(l))
	assert.False(t, model.LinkFilter{OwnerID: "u1", CreatedTo: now}.Match(l))

	e := &model.ClickEvent{LinkID: "L1", Timestamp: now}
	assert.True(t, model.ClickFilter{LinkID: "L1", From: now, To: now}.Match(e))
	assert.False(t, model.ClickFilter{LinkID: "L1", From: now.Add(time.Second)}.Match(e))
	assert.False(t, model.ClickFilter{LinkID: "L2"}.Match(e))
}
