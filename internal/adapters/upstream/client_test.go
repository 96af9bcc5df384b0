package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

func serve(t *testing.T, status int, body string) (*Client, *string) {
	t.Helper()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second, nil), &path
}

func TestFetchRecords_Workers(t *testing.T) {
	c, path := serve(t, http.StatusOK, `{
		"success": true,
		"labors": [
			{"_id": "w1", "name": "Ravi", "designation": "Plumber", "avalablity_status": true,
			 "location": {"latitude": 12.98, "longitude": 77.60}},
			{"_id": "w2", "name": "Asha", "avalablity_status": false}
		]
	}`)

	records, err := c.FetchRecords(context.Background(), domain.KindWorker)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/api/v1/labor/getAllLabors", *path)
	assert.Equal(t, domain.Text("w1"), records[0].ID)
	assert.Equal(t, domain.FlagOf(false), records[1].Availability)
}

func TestFetchRecords_MerchantsKey(t *testing.T) {
	c, path := serve(t, http.StatusOK, `{"success": true, "merchants": [{"_id": "m1", "buisnessName": "Gupta Hardware"}]}`)

	records, err := c.FetchRecords(context.Background(), domain.KindMerchant)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "/api/v1/merchent/getAllMerchents", *path)
	assert.Equal(t, domain.Text("Gupta Hardware"), records[0].BusinessName)
}

func TestFetchRecords_MissingListIsEmpty(t *testing.T) {
	c, _ := serve(t, http.StatusOK, `{"success": true}`)

	records, err := c.FetchRecords(context.Background(), domain.KindArchitect)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetchRecords_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"success": false}`},
		{"not successful", http.StatusOK, `{"success": false, "labors": []}`},
		{"success missing", http.StatusOK, `{"labors": []}`},
		{"not json", http.StatusOK, `<html>maintenance</html>`},
		{"list not an array", http.StatusOK, `{"success": true, "labors": "none"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := serve(t, tt.status, tt.body)
			_, err := c.FetchRecords(context.Background(), domain.KindWorker)
			assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable), "got %v", err)
		})
	}
}

func TestFetchRecords_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second, nil)
	_, err := c.FetchRecords(context.Background(), domain.KindWorker)
	assert.True(t, errors.Is(err, domain.ErrUpstreamUnavailable), "got %v", err)
}

func TestFetchRecords_UnknownKind(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second, nil)
	_, err := c.FetchRecords(context.Background(), domain.Kind("plumber"))
	assert.True(t, errors.Is(err, domain.ErrUnknownKind), "got %v", err)
}
