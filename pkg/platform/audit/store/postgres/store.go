package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	audit "proofgate/pkg/platform/audit"
)

// Schema is the table the store expects. Deployment migrations apply it;
// tests apply it to throwaway databases.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id              UUID PRIMARY KEY,
    category        TEXT NOT NULL,
    occurred_at     TIMESTAMPTZ NOT NULL,
    action          TEXT NOT NULL,
    scope_id        TEXT NOT NULL DEFAULT '',
    correlation_id  TEXT NOT NULL DEFAULT '',
    request_id      TEXT NOT NULL DEFAULT '',
    decision        TEXT NOT NULL DEFAULT '',
    reason          TEXT NOT NULL DEFAULT '',
    details         TEXT[] NOT NULL DEFAULT '{}',
    subject_id_hash TEXT NOT NULL DEFAULT '',
    device_summary  TEXT NOT NULL DEFAULT '',
    client_ip       TEXT NOT NULL DEFAULT ''
)`

// Store persists audit events to Postgres via pgx.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL audit store over an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect dials Postgres and verifies the connection.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	const query = `
		INSERT INTO audit_events (
		    id, category, occurred_at, action, scope_id, correlation_id,
		    request_id, decision, reason, details, subject_id_hash,
		    device_summary, client_ip
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.pool.Exec(ctx, query,
		uuid.New(),
		string(event.Category),
		ts,
		event.Action,
		event.ScopeID,
		event.CorrelationID,
		event.RequestID,
		event.Decision,
		event.Reason,
		event.Details,
		event.SubjectIDHash,
		event.DeviceSummary,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT category, occurred_at, action, scope_id, correlation_id,
		       request_id, decision, reason, details, subject_id_hash,
		       device_summary, client_ip
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(
			&category, &e.Timestamp, &e.Action, &e.ScopeID, &e.CorrelationID,
			&e.RequestID, &e.Decision, &e.Reason, &e.Details, &e.SubjectIDHash,
			&e.DeviceSummary, &e.ClientIP,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	return events, rows.Err()
}
