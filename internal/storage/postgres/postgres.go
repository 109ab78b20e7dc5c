// Package postgres implements storage.Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Totarae/linkgate/internal/database"
	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const linkColumns = `id::text, owner_id, short_code, destination_url, title, password_hash,
	password_salt, custom_message, created_at, click_count, active`

var (
	_ storage.Store       = (*Store)(nil)
	_ storage.ClickWriter = (*Store)(nil)
)

// Store keeps links and click events in the tables created by the
// migrations package.
type Store struct {
	DB *database.DB
}

// New returns a Store over db.
func New(db *database.DB) *Store {
	return &Store{DB: db}
}

// InsertLinkIfAbsent relies on the partial unique index over active short
// codes, so the check and the insert are one statement.
func (s *Store) InsertLinkIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	id, err := uuid.Parse(link.ID)
	if err != nil {
		return false, &model.ValidationError{Field: "id", Reason: "is not a uuid"}
	}
	var hash, salt []byte
	if link.Password != nil {
		hash, salt = link.Password.Hash, link.Password.Salt
	}

	query := `INSERT INTO links (id, owner_id, short_code, destination_url, title, password_hash,
	              password_salt, custom_message, created_at, click_count, active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (short_code) WHERE active DO NOTHING
	          RETURNING id::text`

	var inserted string
	err = s.DB.Pool.QueryRow(ctx, query,
		id, link.OwnerID, link.ShortCode, link.DestinationURL, link.Title, hash, salt,
		link.CustomMessage, link.CreatedAt, link.ClickCount, link.Active,
	).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, model.Unavailable("insert link", err)
	}
	return true, nil
}

func (s *Store) GetLink(ctx context.Context, id string) (*model.Link, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	row := s.DB.Pool.QueryRow(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1`, uid)
	return scanOne(row, "get link")
}

// GetLinkByCode prefers the active link; otherwise the newest inactive one.
func (s *Store) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1
	          ORDER BY active DESC, created_at DESC LIMIT 1`
	row := s.DB.Pool.QueryRow(ctx, query, code)
	return scanOne(row, "get link by code")
}

func (s *Store) QueryLinks(ctx context.Context, f model.LinkFilter) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links
	          WHERE owner_id = $1
	            AND ($2::timestamptz IS NULL OR created_at >= $2)
	            AND ($3::timestamptz IS NULL OR created_at < $3)
	          ORDER BY created_at DESC`

	rows, err := s.DB.Pool.Query(ctx, query, f.OwnerID, nullTime(f.CreatedFrom), nullTime(f.CreatedTo))
	if err != nil {
		return nil, model.Unavailable("query links", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, model.Unavailable("scan link", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("query links", err)
	}
	return links, nil
}

func (s *Store) UpdateDestination(ctx context.Context, id, destinationURL, title string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}
	tag, err := s.DB.Pool.Exec(ctx,
		`UPDATE links SET destination_url = $2, title = $3 WHERE id = $1`, uid, destinationURL, title)
	if err != nil {
		return model.Unavailable("update destination", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}
	tag, err := s.DB.Pool.Exec(ctx, `UPDATE links SET active = $2 WHERE id = $1`, uid, active)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrCollision
		}
		return model.Unavailable("set active", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}
	tag, err := s.DB.Pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, uid)
	if err != nil {
		return model.Unavailable("delete link", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// IncrementClicks is a single UPDATE, so concurrent calls never lose counts.
func (s *Store) IncrementClicks(ctx context.Context, linkID string, delta int64) error {
	uid, err := uuid.Parse(linkID)
	if err != nil {
		return model.ErrNotFound
	}
	tag, err := s.DB.Pool.Exec(ctx,
		`UPDATE links SET click_count = click_count + $2 WHERE id = $1`, uid, delta)
	if err != nil {
		return model.Unavailable("increment clicks", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) AppendClick(ctx context.Context, ev *model.ClickEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		return &model.ValidationError{Field: "id", Reason: "is not a uuid"}
	}
	linkID, err := uuid.Parse(ev.LinkID)
	if err != nil {
		return &model.ValidationError{Field: "link_id", Reason: "is not a uuid"}
	}
	_, err = s.DB.Pool.Exec(ctx,
		`INSERT INTO click_events (id, link_id, occurred_at, user_agent, referrer) VALUES ($1, $2, $3, $4, $5)`,
		id, linkID, ev.Timestamp, ev.UserAgent, ev.Referrer)
	return model.Unavailable("append click", err)
}

// RecordClick appends ev and increments its link in one transaction.
func (s *Store) RecordClick(ctx context.Context, ev *model.ClickEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		return &model.ValidationError{Field: "id", Reason: "is not a uuid"}
	}
	linkID, err := uuid.Parse(ev.LinkID)
	if err != nil {
		return model.ErrNotFound
	}

	err = pgx.BeginFunc(ctx, s.DB.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE links SET click_count = click_count + 1 WHERE id = $1`, linkID)
		if err != nil {
			return model.Unavailable("record click", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO click_events (id, link_id, occurred_at, user_agent, referrer) VALUES ($1, $2, $3, $4, $5)`,
			id, linkID, ev.Timestamp, ev.UserAgent, ev.Referrer)
		return model.Unavailable("record click", err)
	})
	if err != nil && !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrStoreUnavailable) {
		return model.Unavailable("record click", err)
	}
	return err
}

func (s *Store) QueryClicks(ctx context.Context, f model.ClickFilter) ([]*model.ClickEvent, error) {
	linkID, err := uuid.Parse(f.LinkID)
	if err != nil {
		return nil, nil
	}
	query := `SELECT id::text, link_id::text, occurred_at, user_agent, referrer FROM click_events
	          WHERE link_id = $1
	            AND ($2::timestamptz IS NULL OR occurred_at >= $2)
	            AND ($3::timestamptz IS NULL OR occurred_at <= $3)
	          ORDER BY occurred_at ASC`

	rows, err := s.DB.Pool.Query(ctx, query, linkID, nullTime(f.From), nullTime(f.To))
	if err != nil {
		return nil, model.Unavailable("query clicks", err)
	}
	defer rows.Close()

	var events []*model.ClickEvent
	for rows.Next() {
		ev := &model.ClickEvent{}
		if err := rows.Scan(&ev.ID, &ev.LinkID, &ev.Timestamp, &ev.UserAgent, &ev.Referrer); err != nil {
			return nil, model.Unavailable("scan click", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("query clicks", err)
	}
	return events, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return model.Unavailable("ping", s.DB.Ping(ctx))
}

func (s *Store) Close() error {
	s.DB.Close()
	return nil
}

func scanOne(row pgx.Row, op string) (*model.Link, error) {
	l, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, model.Unavailable(op, err)
	}
	return l, nil
}

func scanLink(row pgx.Row) (*model.Link, error) {
	l := &model.Link{}
	var hash, salt []byte
	err := row.Scan(&l.ID, &l.OwnerID, &l.ShortCode, &l.DestinationURL, &l.Title, &hash, &salt,
		&l.CustomMessage, &l.CreatedAt, &l.ClickCount, &l.Active)
	if err != nil {
		return nil, err
	}
	if hash != nil {
		l.Password = &model.Credential{Hash: hash, Salt: salt}
	}
	return l, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
