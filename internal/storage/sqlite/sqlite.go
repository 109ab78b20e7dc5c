// Package sqlite implements storage.Store on a single SQLite file using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/storage"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var (
	_ storage.Store       = (*Store)(nil)
	_ storage.ClickWriter = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS links (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT    NOT NULL,
	short_code      TEXT    NOT NULL,
	destination_url TEXT    NOT NULL,
	title           TEXT    NOT NULL DEFAULT '',
	password_hash   BLOB,
	password_salt   BLOB,
	custom_message  TEXT    NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL,
	click_count     INTEGER NOT NULL DEFAULT 0,
	active          INTEGER NOT NULL DEFAULT 1
);
CREATE UNIQUE INDEX IF NOT EXISTS links_active_short_code_idx ON links (short_code) WHERE active = 1;
CREATE INDEX IF NOT EXISTS links_owner_created_idx ON links (owner_id, created_at);

CREATE TABLE IF NOT EXISTS click_events (
	id          TEXT PRIMARY KEY,
	link_id     TEXT    NOT NULL,
	occurred_at INTEGER NOT NULL,
	user_agent  TEXT    NOT NULL DEFAULT '',
	referrer    TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS click_events_link_time_idx ON click_events (link_id, occurred_at);
`

const linkColumns = `id, owner_id, short_code, destination_url, title, password_hash, password_salt,
	custom_message, created_at, click_count, active`

// Store is a storage.Store over one SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer connection; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000;", "PRAGMA journal_mode = WAL;", schema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) InsertLinkIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	var hash, salt []byte
	if link.Password != nil {
		hash, salt = link.Password.Hash, link.Password.Salt
	}

	query := `INSERT INTO links (` + linkColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT DO NOTHING`
	res, err := s.db.ExecContext(ctx, query,
		link.ID, link.OwnerID, link.ShortCode, link.DestinationURL, link.Title, hash, salt,
		link.CustomMessage, toMicros(link.CreatedAt), link.ClickCount, link.Active,
	)
	if err != nil {
		return false, model.Unavailable("insert link", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, model.Unavailable("insert link", err)
	}
	return n == 1, nil
}

func (s *Store) GetLink(ctx context.Context, id string) (*model.Link, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = ?`, id)
	return scanOne(row, "get link")
}

func (s *Store) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE short_code = ?
		ORDER BY active DESC, created_at DESC LIMIT 1`, code)
	return scanOne(row, "get link by code")
}

func (s *Store) QueryLinks(ctx context.Context, f model.LinkFilter) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE owner_id = ?`
	args := []any{f.OwnerID}
	if !f.CreatedFrom.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, toMicros(f.CreatedFrom))
	}
	if !f.CreatedTo.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, toMicros(f.CreatedTo))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	res, err := s.db.ExecContext(ctx,
		`UPDATE links SET destination_url = ?, title = ? WHERE id = ?`, destinationURL, title, id)
	return affectedOne(res, err, "update destination")
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE links SET active = ? WHERE id = ?`, active, id)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return model.ErrCollision
	}
	return affectedOne(res, err, "set active")
}

func (s *Store) DeleteLink(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	return affectedOne(res, err, "delete link")
}

func (s *Store) IncrementClicks(ctx context.Context, linkID string, delta int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE links SET click_count = click_count + ? WHERE id = ?`, delta, linkID)
	return affectedOne(res, err, "increment clicks")
}

func (s *Store) AppendClick(ctx context.Context, ev *model.ClickEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO click_events (id, link_id, occurred_at, user_agent, referrer) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.LinkID, toMicros(ev.Timestamp), ev.UserAgent, ev.Referrer)
	return model.Unavailable("append click", err)
}

// RecordClick appends ev and increments its link in one transaction.
func (s *Store) RecordClick(ctx context.Context, ev *model.ClickEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Unavailable("record click", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE links SET click_count = click_count + 1 WHERE id = ?`, ev.LinkID)
	if err := affectedOne(res, err, "record click"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO click_events (id, link_id, occurred_at, user_agent, referrer) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.LinkID, toMicros(ev.Timestamp), ev.UserAgent, ev.Referrer); err != nil {
		return model.Unavailable("record click", err)
	}
	return model.Unavailable("record click", tx.Commit())
}

func (s *Store) QueryClicks(ctx context.Context, f model.ClickFilter) ([]*model.ClickEvent, error) {
	query := `SELECT id, link_id, occurred_at, user_agent, referrer FROM click_events WHERE link_id = ?`
	args := []any{f.LinkID}
	if !f.From.IsZero() {
		query += ` AND occurred_at >= ?`
		args = append(args, toMicros(f.From))
	}
	if !f.To.IsZero() {
		query += ` AND occurred_at <= ?`
		args = append(args, toMicros(f.To))
	}
	query += ` ORDER BY occurred_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.Unavailable("query clicks", err)
	}
	defer rows.Close()

	var events []*model.ClickEvent
	for rows.Next() {
		ev := &model.ClickEvent{}
		var at int64
		if err := rows.Scan(&ev.ID, &ev.LinkID, &at, &ev.UserAgent, &ev.Referrer); err != nil {
			return nil, model.Unavailable("scan click", err)
		}
		ev.Timestamp = fromMicros(at)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Unavailable("query clicks", err)
	}
	return events, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return model.Unavailable("ping", s.db.PingContext(ctx))
}

func (s *Store) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner, op string) (*model.Link, error) {
	l, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, model.Unavailable(op, err)
	}
	return l, nil
}

func scanLink(row scanner) (*model.Link, error) {
	l := &model.Link{}
	var hash, salt []byte
	var created int64
	err := row.Scan(&l.ID, &l.OwnerID, &l.ShortCode, &l.DestinationURL, &l.Title, &hash, &salt,
		&l.CustomMessage, &created, &l.ClickCount, &l.Active)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = fromMicros(created)
	if hash != nil {
		l.Password = &model.Credential{Hash: hash, Salt: salt}
	}
	return l, nil
}

func affectedOne(res sql.Result, err error, op string) error {
	if err != nil {
		return model.Unavailable(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Unavailable(op, err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func toMicros(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromMicros(us int64) time.Time { return time.UnixMicro(us).UTC() }
