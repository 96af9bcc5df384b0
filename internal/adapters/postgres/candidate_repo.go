package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/pkg/logging"
)

// CandidateRepo implements ports.CandidateRepository with pgx. Records are kept in
// their upstream shape as JSONB so normalization stays in one place.
type CandidateRepo struct {
	db *DB
}

// NewCandidateRepo creates a new CandidateRepo.
func NewCandidateRepo(db *DB) *CandidateRepo {
	return &CandidateRepo{db: db}
}

// FetchRecords returns every stored record of a kind in insertion order.
func (r *CandidateRepo) FetchRecords(ctx context.Context, kind domain.Kind) ([]domain.CandidateRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT record FROM candidates
		WHERE kind = $1
		ORDER BY position, external_id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s candidates: %w", domain.ErrUpstreamUnavailable, kind, err)
	}
	defer rows.Close()

	records := make([]domain.CandidateRecord, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		var rec domain.CandidateRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logging.FromContext(ctx).Warn("stored candidate record is not valid json, skipping",
				"kind", kind, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s candidates: %w", domain.ErrUpstreamUnavailable, kind, err)
	}
	return records, nil
}

// UpsertBatch stores records keyed by (kind, _id) using pgx.Batch and logs a seed run.
// Records without an id are skipped.
func (r *CandidateRepo) UpsertBatch(ctx context.Context, kind domain.Kind, records []domain.CandidateRecord) error {
	batch := &pgx.Batch{}
	queued := 0
	for i, rec := range records {
		id := strings.TrimSpace(string(rec.ID))
		if id == "" {
			logging.FromContext(ctx).Warn("candidate record has no id, not stored", "kind", kind, "position", i)
			continue
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", id, err)
		}
		available := rec.Availability.Value || (!rec.Availability.Set && kind == domain.KindMerchant)
		batch.Queue(`
			INSERT INTO candidates (kind, external_id, position, name, available, record, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (kind, external_id) DO UPDATE
			SET position = EXCLUDED.position, name = EXCLUDED.name,
			    available = EXCLUDED.available, record = EXCLUDED.record,
			    updated_at = now()
		`, string(kind), id, i, strings.TrimSpace(string(rec.Name)), available, data)
		queued++
	}
	batch.Queue(`INSERT INTO seed_runs (kind, records) VALUES ($1, $2)`, string(kind), queued)

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Stats returns per-kind row counts and the time of the last seed run.
func (r *CandidateRepo) Stats(ctx context.Context) ([]domain.SourceStats, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT c.kind,
		       count(*),
		       count(*) FILTER (WHERE c.available),
		       (SELECT max(s.seeded_at) FROM seed_runs s WHERE s.kind = c.kind)
		FROM candidates c
		GROUP BY c.kind
		ORDER BY c.kind
	`)
	if err != nil {
		return nil, fmt.Errorf("candidate stats: %w", err)
	}
	defer rows.Close()

	stats := make([]domain.SourceStats, 0, len(domain.Kinds))
	for rows.Next() {
		var (
			s        domain.SourceStats
			kind     string
			lastSeed *time.Time
		)
		if err := rows.Scan(&kind, &s.Total, &s.Available, &lastSeed); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		s.Kind = domain.Kind(kind)
		if lastSeed != nil {
			s.LastSeed = lastSeed.UTC().Format(time.RFC3339)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
