package report

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inno-sport-inh/backend/internal/telemetry"
)

// PersistenceHandler writes consumed usage records into Postgres and
// maintains the per-day rollup.
type PersistenceHandler struct {
	pool *pgxpool.Pool
}

// NewPersistenceHandler constructs a handler backed by the provided pool.
func NewPersistenceHandler(pool *pgxpool.Pool) *PersistenceHandler {
	return &PersistenceHandler{pool: pool}
}

// Handle stores the usage record and increments the daily rollup. The
// insert is keyed by record id, so redelivered records do not double
// count.
func (h *PersistenceHandler) Handle(ctx context.Context, record telemetry.UsageRecord) error {
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO route_usage (record_id, method, path, resource, action, variant, status, caller, duration_ms, recorded_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
         ON CONFLICT (record_id) DO NOTHING`,
		record.RecordID,
		record.Method,
		record.Path,
		record.Resource,
		record.Action,
		string(record.Variant),
		record.Status,
		record.Caller,
		record.DurationMS,
		record.RecordedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Duplicate delivery; the rollup already counted it.
		return tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO route_usage_daily (day, resource, action, variant, requests)
         VALUES ($1::date, $2, $3, $4, 1)
         ON CONFLICT (day, resource, action, variant)
         DO UPDATE SET requests = route_usage_daily.requests + 1`,
		record.RecordedAt,
		record.Resource,
		record.Action,
		string(record.Variant),
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
