package usecases

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/pkg/logging"
	"github.com/samirrijal/geomatch/internal/pkg/metrics"
)

const notAvailable = "N/A"

// normalization is the outcome of one normalize pass. Incomplete is set when a
// record was dropped for a transient geocoding failure and may show up on retry.
type normalization struct {
	candidates []domain.Candidate
	incomplete int
}

// normalize turns raw records into candidates. Records that are unavailable, unnamed
// or cannot be located are skipped and logged. Output keeps upstream order.
// A cancelled context aborts the pass with ctx.Err().
func (s *CandidateService) normalize(ctx context.Context, kind domain.Kind, records []domain.CandidateRecord) (normalization, error) {
	log := logging.FromContext(ctx)

	type slot struct {
		candidate domain.Candidate
		ok        bool
		transient bool
	}
	slots := make([]slot, len(records))
	var pending []int

	for i := range records {
		r := &records[i]
		if !isAvailable(kind, r) {
			metrics.CandidatesSkipped.WithLabelValues(string(kind), "unavailable").Inc()
			continue
		}
		if strings.TrimSpace(string(r.Name)) == "" {
			log.Warn("candidate record has no name, skipping",
				"kind", kind, "id", string(r.ID), "error", domain.ErrMalformedRecord)
			metrics.CandidatesSkipped.WithLabelValues(string(kind), "missing_name").Inc()
			continue
		}

		slots[i].candidate = toCandidate(kind, r)
		if p, ok := r.Coordinates(); ok {
			slots[i].candidate.Location = p
			slots[i].ok = true
			continue
		}
		pending = append(pending, i)
	}

	locate := func(i int) {
		p, err := s.locate(ctx, kind, &records[i])
		switch {
		case err == nil:
			slots[i].candidate.Location = p
			slots[i].ok = true
		case !errors.Is(err, errNoAddress) && !errors.Is(err, domain.ErrGeocodeNotFound):
			slots[i].transient = true
		}
	}

	if s.geocodeConcurrency <= 1 || len(pending) <= 1 {
		for _, i := range pending {
			if ctx.Err() != nil {
				break
			}
			locate(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, s.geocodeConcurrency)
		for _, i := range pending {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				if ctx.Err() != nil {
					return
				}
				locate(i)
			}(i)
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return normalization{}, err
	}

	out := normalization{candidates: make([]domain.Candidate, 0, len(records))}
	for _, sl := range slots {
		switch {
		case sl.ok:
			out.candidates = append(out.candidates, sl.candidate)
		case sl.transient:
			out.incomplete++
		}
	}
	return out, nil
}

var errNoAddress = errors.New("candidate has neither coordinates nor address")

// locate geocodes the record's postal address.
func (s *CandidateService) locate(ctx context.Context, kind domain.Kind, r *domain.CandidateRecord) (domain.GeoPoint, error) {
	log := logging.FromContext(ctx)

	address := addressBlock(kind, r).ToAddress().String()
	if address == "" {
		log.Warn("candidate has neither coordinates nor address, skipping", "kind", kind, "id", string(r.ID))
		metrics.CandidatesSkipped.WithLabelValues(string(kind), "no_address").Inc()
		return domain.GeoPoint{}, errNoAddress
	}

	p, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		log.Warn("geocoding candidate address failed, skipping",
			"kind", kind, "id", string(r.ID), "address", address, "error", err)
		metrics.CandidatesSkipped.WithLabelValues(string(kind), "geocode_failed").Inc()
		return domain.GeoPoint{}, err
	}
	return p, nil
}

// Merchants carry no availability flag upstream and count as available unless one is sent.
func isAvailable(kind domain.Kind, r *domain.CandidateRecord) bool {
	if !r.Availability.Set {
		return kind == domain.KindMerchant
	}
	return r.Availability.Value
}

func addressBlock(kind domain.Kind, r *domain.CandidateRecord) *domain.RecordAddress {
	switch {
	case kind == domain.KindArchitect && r.WorkplaceAddress != nil:
		return r.WorkplaceAddress
	case kind == domain.KindMerchant && r.BusinessAddress != nil:
		return r.BusinessAddress
	}
	return r.Address
}

func toCandidate(kind domain.Kind, r *domain.CandidateRecord) domain.Candidate {
	c := domain.Candidate{
		ID:          string(r.ID),
		Kind:        kind,
		Name:        strings.TrimSpace(string(r.Name)),
		RatePerHour: r.RatePerHour.Value,
		Phone:       orNA(string(r.MobileNumber)),
		Email:       orNA(string(r.Email)),
		Address:     addressBlock(kind, r).ToAddress(),
		Available:   true,
	}

	switch kind {
	case domain.KindWorker:
		c.Category = strings.TrimSpace(string(r.Designation))
		if c.Category == "" {
			c.Category = "Unknown"
		}
	case domain.KindArchitect:
		c.Category = "Architect"
		experience, rating, image := r.Experience.Value, r.OverallRating.Value, strings.TrimSpace(string(r.ProfileImage))
		c.Experience, c.OverallRating, c.ProfileImage = &experience, &rating, &image
		c.Address = domain.Address{
			Line:    orNA(c.Address.Line),
			City:    orNA(c.Address.City),
			State:   orNA(c.Address.State),
			Pincode: orNA(c.Address.Pincode),
		}
	case domain.KindMerchant:
		c.Category = "Merchant"
		c.BusinessName = strings.TrimSpace(string(r.BusinessName))
	}
	return c
}

func orNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notAvailable
	}
	return s
}
