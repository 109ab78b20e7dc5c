package service

import (
	"context"
	"errors"
	"time"

	"github.com/Totarae/linkgate/internal/clicks"
	"github.com/Totarae/linkgate/internal/codegen"
	"github.com/Totarae/linkgate/internal/events"
	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/password"
	"github.com/Totarae/linkgate/internal/redirect"
	"github.com/Totarae/linkgate/internal/stats"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tune a LinkService. The zero value is usable.
type Options struct {
	Password     password.Params
	ClickTimeout time.Duration
	Limiter      redirect.Limiter
	Publisher    events.Publisher
	Allocator    *codegen.Allocator
}

// LinkService is the public surface of the link engine.
type LinkService struct {
	Store     storage.Store
	Logger    *zap.Logger
	allocator *codegen.Allocator
	gate      *password.Gate
	recorder  *clicks.Recorder
	machine   *redirect.Machine
	stats     *stats.Aggregator
	publisher events.Publisher
	now       func() time.Time
}

func NewLinkService(store storage.Store, logger *zap.Logger, opts Options) *LinkService {
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Allocator == nil {
		opts.Allocator = codegen.NewAllocator()
	}

	gate := password.NewGate(opts.Password)
	recorder := clicks.NewRecorder(store, logger,
		clicks.WithPublisher(opts.Publisher),
		clicks.WithTimeout(opts.ClickTimeout),
	)
	var machineOpts []redirect.Option
	if opts.Limiter != nil {
		machineOpts = append(machineOpts, redirect.WithLimiter(opts.Limiter))
	}

	return &LinkService{
		Store:     store,
		Logger:    logger,
		allocator: opts.Allocator,
		gate:      gate,
		recorder:  recorder,
		machine:   redirect.NewMachine(store, gate, recorder, machineOpts...),
		stats:     stats.NewAggregator(store),
		publisher: opts.Publisher,
		now:       time.Now,
	}
}

// CreateLink validates req, hashes the optional password and claims a code.
// Nothing is persisted when the code cannot be claimed.
func (s *LinkService) CreateLink(ctx context.Context, req model.CreateLinkRequest) (*model.Link, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	link := &model.Link{
		OwnerID:        req.OwnerID,
		DestinationURL: req.DestinationURL,
		Title:          model.TitleFromURL(req.DestinationURL),
		CustomMessage:  req.CustomMessage,
		CreatedAt:      s.now().UTC().Truncate(time.Microsecond),
		Active:         true,
	}
	if req.Password != "" {
		cred, err := s.gate.Protect(req.Password)
		if err != nil {
			return nil, err
		}
		link.Password = cred
	}

	code, err := s.allocator.Allocate(ctx, req.Slug, func(ctx context.Context, code string) (bool, error) {
		link.ID = uuid.NewString()
		link.ShortCode = code
		return s.Store.InsertLinkIfAbsent(ctx, link)
	})
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCollision):
			s.Logger.Info("Requested slug is taken", zap.String("slug", req.Slug))
		case errors.Is(err, model.ErrExhaustedRetries):
			s.Logger.Error("Could not allocate short code", zap.Int("attempts", codegen.MaxAttempts))
		case errors.Is(err, model.ErrStoreUnavailable):
			s.Logger.Error("Failed to save link", zap.Error(err))
		}
		return nil, err
	}
	link.ShortCode = code

	events.Emit(ctx, s.publisher, s.Logger, events.Event{
		Name:        events.LinkCreated,
		ShortCode:   link.ShortCode,
		LinkID:      link.ID,
		OwnerID:     link.OwnerID,
		HasPassword: link.Protected(),
		At:          link.CreatedAt,
	})
	return link, nil
}

// EditLink replaces the destination of a link and refreshes its title.
func (s *LinkService) EditLink(ctx context.Context, linkID, destinationURL string) error {
	dest, err := model.ValidateDestination(destinationURL)
	if err != nil {
		return err
	}
	return s.Store.UpdateDestination(ctx, linkID, dest, model.TitleFromURL(dest))
}

// ResolveAndRedirect drives the redirect state machine and returns the
// destination. The click is recorded in the background.
func (s *LinkService) ResolveAndRedirect(ctx context.Context, shortCode string, password *string, meta model.ClickMeta) (string, error) {
	out, err := s.Resolve(ctx, redirect.Request{ShortCode: shortCode, Password: password, Meta: meta})
	if err != nil {
		return "", err
	}
	return out.DestinationURL, nil
}

// Resolve is ResolveAndRedirect with the full request and outcome.
func (s *LinkService) Resolve(ctx context.Context, req redirect.Request) (*redirect.Outcome, error) {
	out, err := s.machine.Resolve(ctx, req)
	if err != nil && errors.Is(err, model.ErrStoreUnavailable) {
		s.Logger.Error("Failed to resolve short code", zap.String("short_code", req.ShortCode), zap.Error(err))
	}
	return out, err
}

func (s *LinkService) UserSummary(ctx context.Context, ownerID string) (*model.StatsSummary, error) {
	return s.stats.UserSummary(ctx, ownerID)
}

// ClicksOverTime returns the sparse per-day click series of a link.
func (s *LinkService) ClicksOverTime(ctx context.Context, linkID string, windowDays int) ([]model.DailyClicks, error) {
	return s.stats.ClicksOverTime(ctx, linkID, windowDays)
}

// DenseClicksOverTime is ClicksOverTime with zero entries for quiet days.
func (s *LinkService) DenseClicksOverTime(ctx context.Context, linkID string, windowDays int) ([]model.DailyClicks, error) {
	series, err := s.stats.ClicksOverTime(ctx, linkID, windowDays)
	if err != nil {
		return nil, err
	}
	from, to := s.stats.Window(windowDays)
	return stats.FillGaps(series, from, to), nil
}

// ListLinks returns the owner's links, newest first. A non-zero to includes
// the whole of its calendar day.
func (s *LinkService) ListLinks(ctx context.Context, ownerID string, from, to time.Time) ([]*model.Link, error) {
	f := model.LinkFilter{OwnerID: ownerID, CreatedFrom: from}
	if !to.IsZero() {
		y, m, d := to.Date()
		f.CreatedTo = time.Date(y, m, d, 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	}
	links, err := s.Store.QueryLinks(ctx, f)
	if err != nil {
		s.Logger.Error("Failed to list links", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return links, nil
}

func (s *LinkService) GetLink(ctx context.Context, id string) (*model.Link, error) {
	return s.Store.GetLink(ctx, id)
}

// GetOwnedLink is GetLink that reports model.ErrNotFound for links of
// other owners.
func (s *LinkService) GetOwnedLink(ctx context.Context, ownerID, id string) (*model.Link, error) {
	link, err := s.Store.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, model.ErrNotFound
	}
	return link, nil
}

// SetActive soft-deletes or restores a link.
func (s *LinkService) SetActive(ctx context.Context, id string, active bool) error {
	return s.Store.SetActive(ctx, id, active)
}

// DeleteLink removes a link for good. Its click history is kept.
func (s *LinkService) DeleteLink(ctx context.Context, id string) error {
	return s.Store.DeleteLink(ctx, id)
}

func (s *LinkService) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

// Shutdown waits for in-flight click recordings.
func (s *LinkService) Shutdown() {
	s.recorder.Wait()
}
