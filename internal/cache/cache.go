// Package cache puts a Redis cache-aside layer in front of a storage.Store
// for short code lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = 10 * time.Minute

var _ storage.Store = (*Store)(nil)

func codeKey(code string) string {
	return "linkgate:code:" + code
}

// entry is the cached form of a link. model.Link hides its credential
// from JSON, so it is copied here explicitly.
type entry struct {
	Link *model.Link `json:"link"`
	Hash []byte      `json:"hash,omitempty"`
	Salt []byte      `json:"salt,omitempty"`
}

// Store wraps another Store. Only GetLinkByCode is served from Redis; every
// mutation that can change what a code resolves to drops the cached key.
// Cached click counts may lag behind the inner store.
type Store struct {
	storage.Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New returns a caching decorator. A non-positive ttl uses DefaultTTL.
func New(inner storage.Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{Store: inner, client: client, ttl: ttl, logger: logger}
}

func (s *Store) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	raw, err := s.client.Get(ctx, codeKey(code)).Bytes()
	switch {
	case err == nil:
		var e entry
		if err := json.Unmarshal(raw, &e); err == nil && e.Link != nil {
			if e.Hash != nil {
				e.Link.Password = &model.Credential{Hash: e.Hash, Salt: e.Salt}
			}
			return e.Link, nil
		}
		s.logger.Warn("Corrupt cache entry", zap.String("short_code", code))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Redis get failed", zap.String("short_code", code), zap.Error(err))
	}

	link, err := s.Store.GetLinkByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.put(ctx, link)
	return link, nil
}

func (s *Store) InsertLinkIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	ok, err := s.Store.InsertLinkIfAbsent(ctx, link)
	if ok {
		s.forget(ctx, link.ShortCode)
	}
	return ok, err
}

func (s *Store) UpdateDestination(ctx context.Context, id, destinationURL, title string) error {
	if err := s.Store.UpdateDestination(ctx, id, destinationURL, title); err != nil {
		return err
	}
	s.forgetLink(ctx, id)
	return nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.Store.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.forgetLink(ctx, id)
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	link, err := s.Store.GetLink(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteLink(ctx, id); err != nil {
		return err
	}
	s.forget(ctx, link.ShortCode)
	return nil
}

// RecordClick uses the inner store's transactional write when it has one.
func (s *Store) RecordClick(ctx context.Context, ev *model.ClickEvent) error {
	if w, ok := s.Store.(storage.ClickWriter); ok {
		return w.RecordClick(ctx, ev)
	}
	if err := s.Store.AppendClick(ctx, ev); err != nil {
		return err
	}
	return s.Store.IncrementClicks(ctx, ev.LinkID, 1)
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return model.Unavailable("redis ping", err)
	}
	return s.Store.Ping(ctx)
}

func (s *Store) Close() error {
	return errors.Join(s.client.Close(), s.Store.Close())
}

func (s *Store) put(ctx context.Context, link *model.Link) {
	e := entry{Link: link}
	if link.Password != nil {
		e.Hash, e.Salt = link.Password.Hash, link.Password.Salt
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, codeKey(link.ShortCode), data, s.ttl).Err(); err != nil {
		s.logger.Warn("Redis set failed", zap.String("short_code", link.ShortCode), zap.Error(err))
	}
}

func (s *Store) forgetLink(ctx context.Context, id string) {
	link, err := s.Store.GetLink(ctx, id)
	if err != nil {
		return
	}
	s.forget(ctx, link.ShortCode)
}

func (s *Store) forget(ctx context.Context, code string) {
	if err := s.client.Del(ctx, codeKey(code)).Err(); err != nil {
		s.logger.Warn("Redis delete failed", zap.String("short_code", code), zap.Error(err))
	}
}
