package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/core/ports"
	"github.com/samirrijal/geomatch/internal/pkg/logging"
	"github.com/samirrijal/geomatch/internal/pkg/metrics"
)

// MatchService answers proximity queries: geocode the origin, fetch the kind's
// candidates and keep those inside the kind's fixed radius.
type MatchService struct {
	geocoder              ports.Geocoder
	candidates            *CandidateService
	publisher             ports.EventPublisher
	requireWorkerCategory bool
	now                   func() time.Time
}

// NewMatchService creates a new MatchService. publisher may be nil.
// requireWorkerCategory makes service_category mandatory for worker queries.
func NewMatchService(
	geocoder ports.Geocoder,
	candidates *CandidateService,
	publisher ports.EventPublisher,
	requireWorkerCategory bool,
) *MatchService {
	return &MatchService{
		geocoder:              geocoder,
		candidates:            candidates,
		publisher:             publisher,
		requireWorkerCategory: requireWorkerCategory,
		now:                   time.Now,
	}
}

// Nearby returns the candidates of q.Kind near q.Location. An empty result is not an error.
func (s *MatchService) Nearby(ctx context.Context, q domain.Query) ([]domain.Candidate, error) {
	if _, err := domain.ParseKind(string(q.Kind)); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBadRequest, err)
	}
	if strings.TrimSpace(q.Location) == "" {
		return nil, fmt.Errorf("%w: location is required", domain.ErrBadRequest)
	}
	q.Category = strings.TrimSpace(q.Category)
	if q.Kind == domain.KindWorker && s.requireWorkerCategory && q.Category == "" {
		return nil, fmt.Errorf("%w: service_category is required", domain.ErrBadRequest)
	}

	ctx, span := tracer.Start(ctx, "MatchService.Nearby", trace.WithAttributes(
		attribute.String("kind", string(q.Kind)),
		attribute.String("category", q.Category),
	))
	defer span.End()

	origin, err := s.geocoder.Geocode(ctx, q.Location)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("geocode origin: %w", err)
	}

	candidates := s.candidates.Fetch(ctx, q.Kind)
	nearby := FilterNearby(origin, candidates, q.Kind.RadiusKm(), q.Category)

	metrics.MatchResults.WithLabelValues(string(q.Kind)).Observe(float64(len(nearby)))
	span.SetAttributes(attribute.Int("fetched", len(candidates)), attribute.Int("nearby", len(nearby)))

	if len(nearby) == 0 {
		logging.FromContext(ctx).Info("no nearby candidates",
			"kind", q.Kind, "radius_km", q.Kind.RadiusKm(), "fetched", len(candidates))
	}

	if s.publisher != nil {
		event := &domain.MatchEvent{
			ID:       uuid.NewString(),
			Kind:     q.Kind,
			Origin:   origin,
			Category: q.Category,
			Results:  len(nearby),
			At:       s.now().UTC(),
		}
		if err := s.publisher.PublishMatch(ctx, event); err != nil {
			logging.FromContext(ctx).Warn("publish match event", "error", err)
		}
	}

	return nearby, nil
}
