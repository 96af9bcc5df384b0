// Package bootstrap wires configuration into adapters and use cases for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/geomatch/internal/adapters/googlemaps"
	mongoadapter "github.com/samirrijal/geomatch/internal/adapters/mongo"
	natsadapter "github.com/samirrijal/geomatch/internal/adapters/nats"
	"github.com/samirrijal/geomatch/internal/adapters/postgres"
	"github.com/samirrijal/geomatch/internal/adapters/upstream"
	"github.com/samirrijal/geomatch/internal/adapters/valkey"
	"github.com/samirrijal/geomatch/internal/core/ports"
	"github.com/samirrijal/geomatch/internal/core/usecases"
	"github.com/samirrijal/geomatch/internal/pkg/config"
)

// Services holds the wired use cases and the backends they run on.
// Optional backends are nil when disabled or unreachable.
type Services struct {
	Candidates *usecases.CandidateService
	Matches    *usecases.MatchService
	Navigation *usecases.NavigationService

	Geocoder ports.Geocoder
	Source   ports.CandidateSource
	Stats    ports.SourceStatsProvider

	DB        *postgres.DB
	Mongo     *mongoadapter.Source
	Cache     *valkey.Cache
	Publisher *natsadapter.Publisher

	closers []func()
}

// Build connects the configured candidate source, maps client, cache and event bus.
// The candidate source and maps client are required; cache and NATS failures are
// logged and the service runs without them.
func Build(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{}

	if err := s.connectSource(ctx, cfg); err != nil {
		s.Close()
		return nil, err
	}

	mapsClient, err := googlemaps.New(googlemaps.Options{
		APIKey:  cfg.Maps.APIKey,
		BaseURL: cfg.Maps.BaseURL,
		Timeout: cfg.Maps.TimeoutDuration(),
		QPS:     cfg.Maps.QPS,
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Password, cfg.Valkey.DB, cfg.Valkey.Prefix)
		if err != nil {
			slog.Warn("valkey unavailable, caching disabled", "error", err)
		} else {
			s.Cache = c
			cache = c
			s.closers = append(s.closers, c.Close)
		}
	}

	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		p, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, events disabled", "error", err)
		} else {
			s.Publisher = p
			publisher = p
			s.closers = append(s.closers, p.Close)
		}
	}

	var geocoder ports.Geocoder = mapsClient
	if cache != nil && cfg.Matching.GeocodeCacheTTL > 0 {
		geocoder = usecases.NewCachingGeocoder(mapsClient, cache, cfg.Matching.GeocodeCacheTTL)
	}

	s.Geocoder = geocoder

	s.Candidates = usecases.NewCandidateService(s.Source, geocoder, cache, publisher, usecases.CandidateOptions{
		SnapshotTTL:        cfg.Matching.SnapshotTTL,
		GeocodeConcurrency: cfg.Matching.GeocodeConcurrency,
	})
	s.Matches = usecases.NewMatchService(geocoder, s.Candidates, publisher, cfg.Matching.RequireWorkerCategory)
	s.Navigation = usecases.NewNavigationService(geocoder, mapsClient)

	slog.Info("services wired",
		"source", cfg.Matching.Source,
		"cache", s.Cache != nil,
		"events", s.Publisher != nil,
	)
	return s, nil
}

func (s *Services) connectSource(ctx context.Context, cfg *config.Config) error {
	switch cfg.Matching.Source {
	case config.SourcePostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		s.DB = db
		s.closers = append(s.closers, db.Close)
		repo := postgres.NewCandidateRepo(db)
		s.Source, s.Stats = repo, repo

	case config.SourceMongo:
		src, err := mongoadapter.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, mongoadapter.DefaultCollections)
		if err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		s.Mongo = src
		s.closers = append(s.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = src.Close(ctx)
		})
		s.Source, s.Stats = src, src

	default:
		s.Source = upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.TimeoutDuration(), upstream.DefaultEndpoints)
	}
	return nil
}

// Close releases every backend in reverse order of acquisition.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
