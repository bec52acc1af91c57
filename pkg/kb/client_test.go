package kb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullticket/helpdesk/pkg/errs"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestSearch(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kb/search", r.URL.Path)
		assert.Equal(t, "vpn setup", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode([]Article{
			{ID: 1, Title: "VPN setup guide", Category: "vpn", Tags: []string{"vpn", "remote"}},
			{ID: 2, Title: "Remote access policy", Category: "security"},
		})
	})

	articles, err := client.Search(context.Background(), "vpn setup", 3)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "VPN setup guide", articles[0].Title)
	assert.True(t, articles[0].HasTag("remote"))
	assert.False(t, articles[1].HasTag("remote"))
}

func TestSearchDefaultLimit(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`[]`))
	})

	articles, err := client.Search(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestSearchUpstreamError(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstream, errs.KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, errs.StatusOf(err))
}

func TestSearchMalformedBody(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidResponse, errs.KindOf(err))
}

func TestSearchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(srv.URL, time.Second)
	srv.Close()

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Equal(t, errs.KindNetwork, errs.KindOf(err))
}
