package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// AppStateKey is the fixed key the session snapshot is stored under.
const AppStateKey = "app_state"

// SessionRepo stores a single JSON snapshot under a fixed key. Each save
// replaces the previous one. The repo treats the payload as opaque bytes;
// the caller owns encoding and validation.
type SessionRepo struct {
	drv *entsql.Driver
	key string
	now func() time.Time
}

// NewSessionRepo returns a repo for the snapshot stored under key.
func NewSessionRepo(drv *entsql.Driver, key string) *SessionRepo {
	return &SessionRepo{drv: drv, key: key, now: time.Now}
}

// Save upserts data under the repo's key.
func (r *SessionRepo) Save(ctx context.Context, data []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(SnapshotsTable.Name).
		Columns("name", "data", "updated_at").
		Values(r.key, string(data), r.now().UTC()).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save snapshot %q: %w", r.key, err)
	}
	return nil
}

// Load returns the stored bytes. ok is false when nothing is stored.
func (r *SessionRepo) Load(ctx context.Context) (data []byte, ok bool, err error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("name", r.key)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, false, fmt.Errorf("load snapshot %q: %w", r.key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("load snapshot %q: %w", r.key, err)
		}
		return nil, false, nil
	}
	var s string
	if err := rows.Scan(&s); err != nil {
		return nil, false, fmt.Errorf("scan snapshot %q: %w", r.key, err)
	}
	return []byte(s), true, nil
}

// UpdatedAt returns when the snapshot was last saved.
func (r *SessionRepo) UpdatedAt(ctx context.Context) (time.Time, bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("updated_at").
		From(entsql.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("name", r.key)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return time.Time{}, false, fmt.Errorf("query snapshot time: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return time.Time{}, false, rows.Err()
	}
	var t time.Time
	if err := rows.Scan(&t); err != nil {
		return time.Time{}, false, fmt.Errorf("scan snapshot time: %w", err)
	}
	return t, true, nil
}

// Clear deletes the snapshot. Clearing an absent snapshot is not an error.
func (r *SessionRepo) Clear(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(SnapshotsTable.Name).
		Where(entsql.EQ("name", r.key)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("clear snapshot %q: %w", r.key, err)
	}
	return nil
}
