package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kewo/kewo-rechner/internal/calculator"
)

// SQLiteStore keeps sessions in the sessions table created by the migrations.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time

	// writeMu serializes Update; a deferred SQLite transaction that
	// upgrades from read to write fails with SQLITE_BUSY instead of waiting.
	writeMu sync.Mutex
}

// NewSQLiteStore returns a store whose sessions expire ttl after their last update.
func NewSQLiteStore(db *sql.DB, ttl time.Duration) *SQLiteStore {
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (calculator.Inputs, error) {
	in, updatedAt, err := s.read(ctx, s.db, id)
	if err != nil {
		return calculator.Inputs{}, err
	}
	if expired(updatedAt, s.now(), s.ttl) {
		return calculator.Inputs{}, ErrNotFound
	}
	return in, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, fn UpdateFunc) (calculator.Inputs, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return calculator.Inputs{}, fmt.Errorf("begin session transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	in, updatedAt, err := s.read(ctx, tx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		in = calculator.Inputs{}
	case err != nil:
		return calculator.Inputs{}, err
	case expired(updatedAt, now, s.ttl):
		in = calculator.Inputs{}
	}

	if err := fn(&in); err != nil {
		return calculator.Inputs{}, err
	}

	data, err := json.Marshal(in)
	if err != nil {
		return calculator.Inputs{}, fmt.Errorf("encode session inputs: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, inputs_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			inputs_json = excluded.inputs_json,
			updated_at = excluded.updated_at
	`, id, string(data), now.Unix(), now.Unix()); err != nil {
		return calculator.Inputs{}, fmt.Errorf("upsert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return calculator.Inputs{}, fmt.Errorf("commit session transaction: %w", err)
	}
	return in, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at <= ?`, now.Add(-s.ttl).Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return int(affected), nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) read(ctx context.Context, q queryRower, id string) (calculator.Inputs, time.Time, error) {
	var (
		raw       string
		updatedAt int64
	)
	err := q.QueryRowContext(ctx, `SELECT inputs_json, updated_at FROM sessions WHERE id = ?`, id).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return calculator.Inputs{}, time.Time{}, ErrNotFound
	}
	if err != nil {
		return calculator.Inputs{}, time.Time{}, fmt.Errorf("query session: %w", err)
	}

	var in calculator.Inputs
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return calculator.Inputs{}, time.Time{}, fmt.Errorf("decode session inputs: %w", err)
	}
	return in, time.Unix(updatedAt, 0), nil
}
