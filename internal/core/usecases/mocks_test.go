package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// --- Mock Geocoder ---

type mockGeocoder struct {
	mu     sync.Mutex
	points map[string]domain.GeoPoint
	errs   map[string]error
	calls  []string
}

func newMockGeocoder() *mockGeocoder {
	return &mockGeocoder{points: map[string]domain.GeoPoint{}, errs: map[string]error{}}
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (domain.GeoPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, address)
	if err, ok := m.errs[address]; ok {
		return domain.GeoPoint{}, err
	}
	if p, ok := m.points[address]; ok {
		return p, nil
	}
	return domain.GeoPoint{}, domain.ErrGeocodeNotFound
}

func (m *mockGeocoder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// --- Mock CandidateSource ---

type mockSource struct {
	fetchFn func(ctx context.Context, kind domain.Kind) ([]domain.CandidateRecord, error)
	calls   int
}

func (m *mockSource) FetchRecords(ctx context.Context, kind domain.Kind) ([]domain.CandidateRecord, error) {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, kind)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

var errCacheMiss = errors.New("valkey nil message")

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) keysWithPrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	matches   []*domain.MatchEvent
	refreshed map[domain.Kind]int
	err       error
}

func (m *mockPublisher) PublishMatch(ctx context.Context, event *domain.MatchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = append(m.matches, event)
	return m.err
}

func (m *mockPublisher) PublishSnapshotRefreshed(ctx context.Context, kind domain.Kind, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refreshed == nil {
		m.refreshed = map[domain.Kind]int{}
	}
	m.refreshed[kind] = count
	return m.err
}

// --- Mock RouteProvider ---

type mockRoutes struct {
	walkFn func(ctx context.Context, origin, destination domain.GeoPoint, departure time.Time) ([]byte, error)
}

func (m *mockRoutes) WalkingRoute(ctx context.Context, origin, destination domain.GeoPoint, departure time.Time) ([]byte, error) {
	if m.walkFn != nil {
		return m.walkFn(ctx, origin, destination, departure)
	}
	return []byte(`[]`), nil
}

// --- Record builders ---

func located(id, name, designation string, lat, lng float64) domain.CandidateRecord {
	return domain.CandidateRecord{
		ID:           domain.Text(id),
		Name:         domain.Text(name),
		Designation:  domain.Text(designation),
		Availability: domain.FlagOf(true),
		Location: &domain.RecordLocation{
			Latitude:  domain.NumberOf(lat),
			Longitude: domain.NumberOf(lng),
		},
	}
}

func addressed(id, name string, addr domain.RecordAddress) domain.CandidateRecord {
	return domain.CandidateRecord{
		ID:           domain.Text(id),
		Name:         domain.Text(name),
		Availability: domain.FlagOf(true),
		Address:      &addr,
	}
}
