// Package memory provides an in-process implementation of storage.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/google/uuid"
)

var (
	_ storage.Store       = (*Store)(nil)
	_ storage.ClickWriter = (*Store)(nil)
)

// Store keeps links and click events in memory. All methods are safe for
// concurrent use; conditional insert and increment happen under one lock.
type Store struct {
	mu     sync.RWMutex
	links  map[string]*model.Link
	active map[string]string // short code -> id of the active link
	clicks []*model.ClickEvent
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		links:  make(map[string]*model.Link),
		active: make(map[string]string),
	}
}

func (s *Store) InsertLinkIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, model.Unavailable("insert link", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if link.Active {
		if _, taken := s.active[link.ShortCode]; taken {
			return false, nil
		}
	}
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	s.links[link.ID] = cloneLink(link)
	if link.Active {
		s.active[link.ShortCode] = link.ID
	}
	return true, nil
}

func (s *Store) GetLink(ctx context.Context, id string) (*model.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.Unavailable("get link", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return cloneLink(l), nil
}

func (s *Store) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.Unavailable("get link by code", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.active[code]; ok {
		return cloneLink(s.links[id]), nil
	}
	var latest *model.Link
	for _, l := range s.links {
		if l.ShortCode != code {
			continue
		}
		if latest == nil || l.CreatedAt.After(latest.CreatedAt) {
			latest = l
		}
	}
	if latest == nil {
		return nil, model.ErrNotFound
	}
	return cloneLink(latest), nil
}

func (s *Store) QueryLinks(ctx context.Context, f model.LinkFilter) ([]*model.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.Unavailable("query links", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Link
	for _, l := range s.links {
		if f.Match(l) {
			out = append(out, cloneLink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateDestination(ctx context.Context, id, destinationURL, title string) error {
	if err := ctx.Err(); err != nil {
		return model.Unavailable("update destination", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[id]
	if !ok {
		return model.ErrNotFound
	}
	l.DestinationURL = destinationURL
	l.Title = title
	return nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	if err := ctx.Err(); err != nil {
		return model.Unavailable("set active", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[id]
	if !ok {
		return model.ErrNotFound
	}
	if l.Active == active {
		return nil
	}
	if active {
		if _, taken := s.active[l.ShortCode]; taken {
			return model.ErrCollision
		}
		s.active[l.ShortCode] = id
	} else {
		delete(s.active, l.ShortCode)
	}
	l.Active = active
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return model.Unavailable("delete link", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[id]
	if !ok {
		return model.ErrNotFound
	}
	if s.active[l.ShortCode] == id {
		delete(s.active, l.ShortCode)
	}
	delete(s.links, id)
	return nil
}

func (s *Store) IncrementClicks(ctx context.Context, linkID string, delta int64) error {
	if err := ctx.Err(); err != nil {
		return model.Unavailable("increment clicks", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[linkID]
	if !ok {
		return model.ErrNotFound
	}
	l.ClickCount += delta
	return nil
}

func (s *Store) AppendClick(ctx context.Context, ev *model.ClickEvent) error {
	if err := ctx.Err(); err != nil {
		return model.Unavailable("append click", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	cp := *ev
	s.clicks = append(s.clicks, &cp)
	return nil
}

// RecordClick appends ev and increments its link under one lock.
func (s *Store) RecordClick(ctx context.Context, ev *model.ClickEvent) error {
	if err := ctx.Err(); err != nil {
		return model.Unavailable("record click", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[ev.LinkID]
	if !ok {
		return model.ErrNotFound
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	cp := *ev
	s.clicks = append(s.clicks, &cp)
	l.ClickCount++
	return nil
}

func (s *Store) QueryClicks(ctx context.Context, f model.ClickFilter) ([]*model.ClickEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.Unavailable("query clicks", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.ClickEvent
	for _, e := range s.clicks {
		if f.Match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func cloneLink(l *model.Link) *model.Link {
	cp := *l
	if l.Password != nil {
		cred := model.Credential{
			Hash: append([]byte(nil), l.Password.Hash...),
			Salt: append([]byte(nil), l.Password.Salt...),
		}
		cp.Password = &cred
	}
	return &cp
}
