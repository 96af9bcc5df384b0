package http

import (
	"time"

	"github.com/nats-io/nats.go"

	mongoadapter "github.com/samirrijal/geomatch/internal/adapters/mongo"
	"github.com/samirrijal/geomatch/internal/adapters/postgres"
	"github.com/samirrijal/geomatch/internal/adapters/valkey"
	"github.com/samirrijal/geomatch/internal/core/ports"
	"github.com/samirrijal/geomatch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Infrastructure fields are optional; nil means not configured.
type Dependencies struct {
	Matches    *usecases.MatchService
	Navigation *usecases.NavigationService
	Candidates *usecases.CandidateService
	Sources    ports.SourceStatsProvider

	NATS  *nats.Conn
	DB    *postgres.DB
	Mongo *mongoadapter.Source
	Cache *valkey.Cache

	RequestTimeout time.Duration
	RateLimit      int // requests per minute per IP
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return 25 * time.Second
}

func (d *Dependencies) rateLimit() int {
	if d.RateLimit > 0 {
		return d.RateLimit
	}
	return 120
}
