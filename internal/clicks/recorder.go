// Package clicks records successful redirects.
package clicks

import (
	"context"
	"sync"
	"time"

	"github.com/Totarae/linkgate/internal/events"
	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one asynchronous recording.
const DefaultTimeout = 5 * time.Second

// Recorder appends click events and bumps link counters. Failures are
// logged and never returned: a redirect must not fail because of analytics.
type Recorder struct {
	store     storage.Store
	publisher events.Publisher
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time

	wg sync.WaitGroup
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithPublisher emits a link.clicked event after each recorded click.
func WithPublisher(p events.Publisher) Option {
	return func(r *Recorder) { r.publisher = p }
}

// WithTimeout overrides DefaultTimeout for RecordAsync.
func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(store storage.Store, logger *zap.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		store:     store,
		publisher: events.Nop{},
		logger:    logger,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores one ClickEvent for linkID and increments its counter. Stores
// implementing storage.ClickWriter do both in one transaction; otherwise the
// event is appended first and the counter bumped after it.
func (r *Recorder) Record(ctx context.Context, linkID string, meta model.ClickMeta) {
	ev := &model.ClickEvent{
		ID:        uuid.NewString(),
		LinkID:    linkID,
		Timestamp: r.now().UTC(),
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}
	if w, ok := r.store.(storage.ClickWriter); ok {
		if err := w.RecordClick(ctx, ev); err != nil {
			r.logger.Warn("Failed to record click", zap.String("link_id", linkID), zap.Error(err))
			return
		}
	} else {
		if err := r.store.AppendClick(ctx, ev); err != nil {
			r.logger.Warn("Failed to append click event", zap.String("link_id", linkID), zap.Error(err))
			return
		}
		if err := r.store.IncrementClicks(ctx, linkID, 1); err != nil {
			r.logger.Warn("Failed to increment click count", zap.String("link_id", linkID), zap.Error(err))
			return
		}
	}
	events.Emit(ctx, r.publisher, r.logger, events.Event{
		Name:   events.LinkClicked,
		LinkID: linkID,
		At:     ev.Timestamp,
	})
}

// RecordAsync runs Record in the background on a context detached from the
// request, bounded by the recorder timeout.
func (r *Recorder) RecordAsync(linkID string, meta model.ClickMeta) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.Record(ctx, linkID, meta)
	}()
}

// Wait blocks until every recording started by RecordAsync has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
