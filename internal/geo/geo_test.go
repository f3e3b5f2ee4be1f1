package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name    string
		admin1  string
		country string
		want    string
	}{
		{"Paris", "", "France", "Paris (France)"},
		{"Cluj-Napoca", "Cluj County", "Romania", "Cluj-Napoca — Cluj County, Romania"},
		{"X", "", "", "X"},
		{"Y", "Somewhere", "", "Y"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, displayLabel(tt.name, tt.admin1, tt.country))
		})
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bucharest", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"name":"Bucharest","latitude":44.43,"longitude":26.1,"country":"Romania","admin1":"București"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	loc, err := c.Search(context.Background(), "Bucharest")
	require.NoError(t, err)
	assert.InDelta(t, 44.43, loc.Lat, 0.001)
	assert.InDelta(t, 26.1, loc.Lon, 0.001)
	assert.Equal(t, "Bucharest — București, Romania", loc.Label)
}

func TestSearchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "Xyzzyville")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "Bucharest")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
