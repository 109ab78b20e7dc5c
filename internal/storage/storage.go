// Package storage defines the persistent document store the link engine
// is built on. Implementations live in the subpackages.
package storage

import (
	"context"

	"github.com/Totarae/linkgate/internal/model"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/Totarae/linkgate/internal/storage Store

// Store is the minimal contract the engine needs from a persistent store.
// Errors caused by the store itself are *model.StoreUnavailableError.
type Store interface {
	// InsertLinkIfAbsent atomically inserts link unless an active link already
	// uses link.ShortCode. It reports false on conflict and persists nothing.
	// The store assigns link.ID when it is empty.
	InsertLinkIfAbsent(ctx context.Context, link *model.Link) (bool, error)
	// GetLink returns the link with the given id or model.ErrNotFound.
	GetLink(ctx context.Context, id string) (*model.Link, error)
	// GetLinkByCode returns the active link for code, or the most recently
	// created inactive one, or model.ErrNotFound.
	GetLinkByCode(ctx context.Context, code string) (*model.Link, error)
	// QueryLinks returns the links matching f, newest first.
	QueryLinks(ctx context.Context, f model.LinkFilter) ([]*model.Link, error)
	// UpdateDestination replaces the destination URL and title of a link.
	UpdateDestination(ctx context.Context, id, destinationURL, title string) error
	// SetActive toggles the soft-delete flag. Reactivating a link whose code
	// is now taken by another active link fails with model.ErrCollision.
	SetActive(ctx context.Context, id string, active bool) error
	// DeleteLink removes a link. Its click events are kept.
	DeleteLink(ctx context.Context, id string) error
	// IncrementClicks atomically adds delta to the click counter of a link.
	IncrementClicks(ctx context.Context, linkID string, delta int64) error
	// AppendClick appends an immutable click event. The store assigns
	// ev.ID when it is empty.
	AppendClick(ctx context.Context, ev *model.ClickEvent) error
	// QueryClicks returns the click events matching f in ascending time order.
	QueryClicks(ctx context.Context, f model.ClickFilter) ([]*model.ClickEvent, error)
	Ping(ctx context.Context) error
	Close() error
}

// ClickWriter is implemented by stores that can append a click event and
// bump the counter of its link in one transaction, so the two never
// diverge. It fails with model.ErrNotFound, persisting nothing, when the
// link does not exist.
type ClickWriter interface {
	RecordClick(ctx context.Context, ev *model.ClickEvent) error
}
