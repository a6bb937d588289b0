package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Study event actions.
const (
	ActionSubmitted = "submitted"
	ActionCompleted = "completed"
)

// StudyEvent records one submit or completion.
type StudyEvent struct {
	ID        int
	Timestamp time.Time
	Mode      string
	Action    string
	Page      int
	Known     int
	Unknown   int
	Mistakes  []string
}

// EventRepo is the append-only study history.
type EventRepo struct {
	drv *entsql.Driver
}

// Append stores ev. A zero Timestamp is set to now.
func (r *EventRepo) Append(ctx context.Context, ev StudyEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.Mistakes == nil {
		ev.Mistakes = []string{}
	}
	mistakes, err := json.Marshal(ev.Mistakes)
	if err != nil {
		return fmt.Errorf("marshal mistakes: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(StudyEventsTable.Name).
		Columns("timestamp", "mode", "action", "page", "known", "unknown", "mistakes").
		Values(ev.Timestamp.UTC(), ev.Mode, ev.Action, ev.Page, ev.Known, ev.Unknown, string(mistakes)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("append study event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]StudyEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("id", "timestamp", "mode", "action", "page", "known", "unknown", "mistakes").
		From(entsql.Table(StudyEventsTable.Name)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query study events: %w", err)
	}
	defer rows.Close()

	var events []StudyEvent
	for rows.Next() {
		var (
			ev       StudyEvent
			mistakes string
		)
		if err := rows.Scan(&ev.ID, &ev.Timestamp, &ev.Mode, &ev.Action, &ev.Page, &ev.Known, &ev.Unknown, &mistakes); err != nil {
			return nil, fmt.Errorf("scan study event: %w", err)
		}
		if err := json.Unmarshal([]byte(mistakes), &ev.Mistakes); err != nil {
			return nil, fmt.Errorf("decode mistakes of event %d: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study events: %w", err)
	}
	return events, nil
}

// Clear removes all history.
func (r *EventRepo) Clear(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(StudyEventsTable.Name).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("clear study events: %w", err)
	}
	return nil
}
