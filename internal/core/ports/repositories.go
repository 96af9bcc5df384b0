package ports

import (
	"context"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// CandidateSource returns raw candidate records for a kind, in upstream order.
// Implementations wrap transport and query failures in domain.ErrUpstreamUnavailable.
type CandidateSource interface {
	FetchRecords(ctx context.Context, kind domain.Kind) ([]domain.CandidateRecord, error)
}

// SourceStatsProvider reports per-kind record counts of a database-backed source.
type SourceStatsProvider interface {
	Stats(ctx context.Context) ([]domain.SourceStats, error)
}

// CandidateRepository is a database-backed candidate source that can also be seeded.
type CandidateRepository interface {
	CandidateSource
	SourceStatsProvider
	UpsertBatch(ctx context.Context, kind domain.Kind, records []domain.CandidateRecord) error
}
