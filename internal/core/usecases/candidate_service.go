package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/core/ports"
	"github.com/samirrijal/geomatch/internal/pkg/logging"
	"github.com/samirrijal/geomatch/internal/pkg/metrics"
	"github.com/samirrijal/geomatch/internal/pkg/telemetry"
)

var tracer = telemetry.Tracer("usecases")

// CandidateOptions tunes snapshot caching and geocoding fan-out.
type CandidateOptions struct {
	// SnapshotTTL caches the normalized list per kind for this many seconds.
	// Zero fetches from the source on every call.
	SnapshotTTL int
	// GeocodeConcurrency bounds parallel geocoding of records without coordinates.
	// Values below 2 geocode sequentially.
	GeocodeConcurrency int
}

// CandidateService fetches and normalizes candidates from a source.
type CandidateService struct {
	source             ports.CandidateSource
	geocoder           ports.Geocoder
	cache              ports.CacheService
	publisher          ports.EventPublisher
	snapshotTTL        int
	geocodeConcurrency int
}

// NewCandidateService creates a new CandidateService. cache and publisher may be nil.
func NewCandidateService(
	source ports.CandidateSource,
	geocoder ports.Geocoder,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	opts CandidateOptions,
) *CandidateService {
	return &CandidateService{
		source:             source,
		geocoder:           geocoder,
		cache:              cache,
		publisher:          publisher,
		snapshotTTL:        opts.SnapshotTTL,
		geocodeConcurrency: opts.GeocodeConcurrency,
	}
}

func snapshotKey(kind domain.Kind) string {
	return "candidates:snapshot:" + string(kind)
}

func (s *CandidateService) snapshotsEnabled() bool {
	return s.cache != nil && s.snapshotTTL > 0
}

// Fetch returns the available, located, named candidates of a kind in upstream order.
// Source failures are logged and yield an empty, non-nil slice.
func (s *CandidateService) Fetch(ctx context.Context, kind domain.Kind) []domain.Candidate {
	ctx, span := tracer.Start(ctx, "CandidateService.Fetch",
		trace.WithAttributes(attribute.String("kind", string(kind))))
	defer span.End()

	if s.snapshotsEnabled() {
		if data, err := s.cache.Get(ctx, snapshotKey(kind)); err == nil {
			var candidates []domain.Candidate
			if err := json.Unmarshal(data, &candidates); err == nil && candidates != nil {
				metrics.CacheHits.WithLabelValues("candidates").Inc()
				span.SetAttributes(attribute.Bool("snapshot_hit", true), attribute.Int("candidates", len(candidates)))
				return candidates
			}
		}
		metrics.CacheMisses.WithLabelValues("candidates").Inc()
	}

	res, err := s.load(ctx, kind)
	if err != nil {
		logging.FromContext(ctx).Error("fetching candidates failed", "kind", kind, "error", err)
		metrics.UpstreamFetchErrors.WithLabelValues(string(kind)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return []domain.Candidate{}
	}
	if res.incomplete == 0 {
		s.store(ctx, kind, res.candidates)
	} else {
		logging.FromContext(ctx).Warn("candidate list incomplete, snapshot not stored",
			"kind", kind, "geocode_failures", res.incomplete)
	}

	span.SetAttributes(attribute.Int("candidates", len(res.candidates)),
		attribute.Int("geocode_failures", res.incomplete))
	return res.candidates
}

// Refresh re-fetches a kind from the source and replaces its snapshot.
// Unlike Fetch it reports source failures so callers can retry. A list with
// transient geocoding failures is not stored and fails with ErrUpstreamUnavailable.
func (s *CandidateService) Refresh(ctx context.Context, kind domain.Kind) (int, error) {
	ctx, span := tracer.Start(ctx, "CandidateService.Refresh",
		trace.WithAttributes(attribute.String("kind", string(kind))))
	defer span.End()

	res, err := s.load(ctx, kind)
	if err == nil && res.incomplete > 0 {
		err = fmt.Errorf("%w: %d candidate addresses could not be geocoded",
			domain.ErrUpstreamUnavailable, res.incomplete)
	}
	if err != nil {
		metrics.UpstreamFetchErrors.WithLabelValues(string(kind)).Inc()
		span.RecordError(err)
		return 0, fmt.Errorf("refresh %s candidates: %w", kind, err)
	}
	candidates := res.candidates
	s.store(ctx, kind, candidates)
	metrics.SnapshotRefreshes.WithLabelValues(string(kind)).Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotRefreshed(ctx, kind, len(candidates)); err != nil {
			logging.FromContext(ctx).Warn("publish snapshot refreshed", "kind", kind, "error", err)
		}
	}
	return len(candidates), nil
}

// Invalidate drops the cached snapshot of a kind, if any.
func (s *CandidateService) Invalidate(ctx context.Context, kind domain.Kind) error {
	if !s.snapshotsEnabled() {
		return nil
	}
	if err := s.cache.Delete(ctx, snapshotKey(kind)); err != nil {
		return fmt.Errorf("invalidate %s snapshot: %w", kind, err)
	}
	logging.FromContext(ctx).Info("candidate snapshot invalidated", "kind", kind)
	return nil
}

func (s *CandidateService) load(ctx context.Context, kind domain.Kind) (normalization, error) {
	records, err := s.source.FetchRecords(ctx, kind)
	if err != nil {
		return normalization{}, err
	}
	return s.normalize(ctx, kind, records)
}

func (s *CandidateService) store(ctx context.Context, kind domain.Kind, candidates []domain.Candidate) {
	if !s.snapshotsEnabled() {
		return
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, snapshotKey(kind), data, s.snapshotTTL); err != nil {
		logging.FromContext(ctx).Warn("storing candidate snapshot", "kind", kind, "error", err)
	}
}
