package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// Endpoint is where a kind's records live and the response key that holds them.
type Endpoint struct {
	Path    string
	ListKey string
}

// DefaultEndpoints are the routes of the upstream provider application.
var DefaultEndpoints = map[domain.Kind]Endpoint{
	domain.KindWorker:    {Path: "/api/v1/labor/getAllLabors", ListKey: "labors"},
	domain.KindArchitect: {Path: "/api/v1/architect/getAllArchitects", ListKey: "architects"},
	domain.KindMerchant:  {Path: "/api/v1/merchent/getAllMerchents", ListKey: "merchants"},
}

// Client implements ports.CandidateSource against the upstream REST API.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	endpoints map[domain.Kind]Endpoint
	timeout   time.Duration
}

// New creates a Client. A nil endpoints map uses DefaultEndpoints.
func New(baseURL string, timeout time.Duration, endpoints map[domain.Kind]Endpoint) *Client {
	if endpoints == nil {
		endpoints = DefaultEndpoints
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "geomatch",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		timeout:   timeout,
	}
}

// FetchRecords performs one GET for the kind. Transport errors, non-2xx statuses,
// undecodable bodies and success=false are reported as ErrUpstreamUnavailable.
func (c *Client) FetchRecords(ctx context.Context, kind domain.Kind) ([]domain.CandidateRecord, error) {
	ep, ok := c.endpoints[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + ep.Path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrUpstreamUnavailable, ep.Path, err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, fmt.Errorf("%w: get %s: status %d", domain.ErrUpstreamUnavailable, ep.Path, code)
	}

	return decodeList(resp.Body(), ep.ListKey)
}

func decodeList(body []byte, listKey string) ([]domain.CandidateRecord, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrUpstreamUnavailable, err)
	}

	var success bool
	if raw, ok := envelope["success"]; ok {
		_ = json.Unmarshal(raw, &success)
	}
	if !success {
		return nil, fmt.Errorf("%w: response not successful", domain.ErrUpstreamUnavailable)
	}

	records := make([]domain.CandidateRecord, 0)
	raw, ok := envelope[listKey]
	if !ok || string(raw) == "null" {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrUpstreamUnavailable, listKey, err)
	}
	return records, nil
}
