package http

import (
	"reflect"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestETagMatches(t *testing.T) {
	const etag = `W/"0123456789abcdef"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{etag, true},
		{`"0123456789abcdef"`, true},
		{`W/"other", ` + etag, true},
		{"*", true},
		{`W/"other"`, false},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, etag); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestPaginationBounds(t *testing.T) {
	tests := []struct {
		p          Pagination
		start, end int
	}{
		{Pagination{Offset: 0, Limit: 2, Total: 5}, 0, 2},
		{Pagination{Offset: 4, Limit: 2, Total: 5}, 4, 5},
		{Pagination{Offset: 5, Limit: 2, Total: 5}, 5, 5},
		{Pagination{Offset: 9, Limit: 2, Total: 0}, 0, 0},
	}
	for _, tt := range tests {
		start, end := tt.p.bounds()
		if start != tt.start || end != tt.end {
			t.Errorf("%+v.bounds() = %d,%d, want %d,%d", tt.p, start, end, tt.start, tt.end)
		}
	}
}

func TestOverlappingSubscriptions(t *testing.T) {
	allMatches, _ := wsSubject("matches", "")
	workerMatches, _ := wsSubject("matches", "worker")
	architectMatches, _ := wsSubject("matches", "architect")
	workerSnapshots, _ := wsSubject("snapshots", "worker")

	subs := func(subjects ...string) map[string]*nats.Subscription {
		m := make(map[string]*nats.Subscription)
		for _, s := range subjects {
			m[s] = nil
		}
		return m
	}

	tests := []struct {
		name       string
		subscribed map[string]*nats.Subscription
		subject    string
		want       []string
	}{
		{"kind replaces channel default", subs(allMatches), workerMatches, []string{allMatches}},
		{"wildcard replaces kinds", subs(workerMatches, architectMatches, workerSnapshots), allMatches,
			[]string{architectMatches, workerMatches}},
		{"distinct kinds coexist", subs(workerMatches), architectMatches, nil},
		{"other channel untouched", subs(allMatches), workerSnapshots, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overlapping(tt.subscribed, tt.subject); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("overlapping(%q) = %v, want %v", tt.subject, got, tt.want)
			}
		})
	}
}
