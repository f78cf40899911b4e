package store

import (
	"context"
	"fmt"
	"time"
)

type eventRow struct {
	ID        int64  `db:"id"`
	Sequence  int64  `db:"sequence"`
	Timestamp int64  `db:"timestamp"`
	UserID    string `db:"user_id"`
	Kind      string `db:"kind"`
	Ref       string `db:"ref"`
	Score     int    `db:"score"`
	Total     int    `db:"total"`
	Detail    string `db:"detail"`
}

func (r eventRow) event() Event {
	return Event{
		ID:        r.ID,
		Sequence:  r.Sequence,
		Timestamp: time.UnixMilli(r.Timestamp).UTC(),
		UserID:    r.UserID,
		Kind:      EventKind(r.Kind),
		Ref:       r.Ref,
		Score:     r.Score,
		Total:     r.Total,
		Detail:    r.Detail,
	}
}

// eventRepo implements EventRepo over the events and llm_events tables.
type eventRepo struct {
	db  dbtx
	seq *sequenceCounter
}

func (r *eventRepo) Append(ctx context.Context, e Event) (Event, error) {
	if e.UserID == "" || e.Kind == "" {
		return Event{}, fmt.Errorf("append event: user and kind are required")
	}
	seqNum, err := r.seq.Next(ctx, r.db)
	if err != nil {
		return Event{}, fmt.Errorf("next sequence: %w", err)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Sequence = seqNum

	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO events (sequence, timestamp, user_id, kind, ref, score, total, detail)
		VALUES (:sequence, :timestamp, :user_id, :kind, :ref, :score, :total, :detail)`,
		eventRow{
			Sequence:  e.Sequence,
			Timestamp: e.Timestamp.UnixMilli(),
			UserID:    e.UserID,
			Kind:      string(e.Kind),
			Ref:       e.Ref,
			Score:     e.Score,
			Total:     e.Total,
			Detail:    e.Detail,
		})
	if err != nil {
		return Event{}, fmt.Errorf("save %s event: %w", e.Kind, err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return Event{}, fmt.Errorf("event id: %w", err)
	}
	e.Timestamp = time.UnixMilli(e.Timestamp.UnixMilli()).UTC()
	return e, nil
}

func (r *eventRepo) History(ctx context.Context, userID string) ([]Event, error) {
	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, sequence, timestamp, user_id, kind, ref, score, total, detail
		FROM events
		WHERE user_id = ?
		  AND sequence > COALESCE(
		      (SELECT MAX(sequence) FROM events WHERE user_id = ? AND kind = ?), 0)
		ORDER BY sequence`,
		userID, userID, string(EventProgressReset))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	out := make([]Event, len(rows))
	for i, row := range rows {
		out[i] = row.event()
	}
	return out, nil
}
