package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullticket/helpdesk/pkg/auth"
	"github.com/nullticket/helpdesk/pkg/chat"
	"github.com/nullticket/helpdesk/pkg/config"
	"github.com/nullticket/helpdesk/pkg/errs"
	"github.com/nullticket/helpdesk/pkg/kb"
	"github.com/nullticket/helpdesk/pkg/tickets"
)

type stubCompleter struct {
	completion string
	err        error
}

func (s *stubCompleter) Complete(_ context.Context, _ string, _ []chat.Message) (string, error) {
	return s.completion, s.err
}

type stubSelfService struct{}

func (stubSelfService) Respond(_ context.Context, _ string) (string, bool) { return "", false }

type stubCreator struct{}

func (stubCreator) Create(_ context.Context, _ tickets.NewTicket) (*tickets.Ticket, error) {
	return &tickets.Ticket{ID: 1, TicketNumber: "T-1", Status: "open"}, nil
}

func newTestServer(t *testing.T, backend http.Handler, completer chat.CompletionClient) *Server {
	t.Helper()

	backendURL := "http://127.0.0.1:0"
	if backend != nil {
		srv := httptest.NewServer(backend)
		t.Cleanup(srv.Close)
		backendURL = srv.URL
	}

	cfg := &config.Config{
		Addr:        ":0",
		APIBaseURL:  backendURL,
		HTTPTimeout: 5 * time.Second,
		JWTSecret:   []byte("test-secret"),
	}
	if completer == nil {
		completer = chat.NewCompleter(nil, "")
	}

	return New(cfg, Deps{
		SelfService: stubSelfService{},
		Completer:   completer,
		Tickets:     stubCreator{},
		KB:          kb.NewClient(backendURL, 5*time.Second),
		Auth:        &auth.Handler{JWTSecret: cfg.JWTSecret},
	})
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	completer := &stubCompleter{completion: "[TICKET_NEEDED]\nTitle: VPN down\nPriority: high\nCategory: network"}
	s := newTestServer(t, nil, completer)

	rec := doJSON(t, s, http.MethodPost, "/api/chat", `{"message":"the vpn is down"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Response      string             `json:"response"`
		NeedsTicket   bool               `json:"needsTicket"`
		TicketDetails *chat.TicketIntent `json:"ticketDetails"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.NeedsTicket)
	require.NotNil(t, resp.TicketDetails)
	assert.Equal(t, "VPN down", resp.TicketDetails.Title)
	assert.Equal(t, "high", resp.TicketDetails.Priority)
	assert.NotContains(t, resp.Response, "[TICKET_NEEDED]")
}

func TestHandleChatNoTicket(t *testing.T) {
	completer := &stubCompleter{completion: "Try restarting the client."}
	s := newTestServer(t, nil, completer)

	rec := doJSON(t, s, http.MethodPost, "/api/chat", `{"message":"vpn is slow"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["needsTicket"])
	assert.NotContains(t, resp, "ticketDetails")
}

func TestHandleChatEmptyMessage(t *testing.T) {
	s := newTestServer(t, nil, &stubCompleter{completion: "ok"})

	rec := doJSON(t, s, http.MethodPost, "/api/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Message is required")
}

func TestHandleChatUnconfigured(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestHandleChatUpstreamStatusForwarded(t *testing.T) {
	s := newTestServer(t, nil, &stubCompleter{err: errs.Upstream(429, "rate limited")})

	rec := doJSON(t, s, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHandleKBSearchShortQuery(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/kb/search?q=a", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 2 characters")
}

func TestHandleKBSearch(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kb/search", r.URL.Path)
		json.NewEncoder(w).Encode([]kb.Article{{ID: 1, Title: "VPN setup", Category: "vpn"}})
	})
	s := newTestServer(t, backend, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/kb/search?q=vpn", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var articles []kb.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "VPN setup", articles[0].Title)
}

func TestHandleKBSearchInvalidLimit(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/kb/search?q=vpn&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxyForwardsTickets(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets/", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"id":1}]`))
	})
	s := newTestServer(t, backend, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/tickets?status=open", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1}]`, rec.Body.String())
}

func TestProxyPreservesUpstreamStatus(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})
	s := newTestServer(t, backend, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/tickets/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyTicketRejectsNonNumericID(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/tickets/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid ticket id")
}

func TestProxyBackendUnreachable(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/tickets", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "backend service is reachable")
}

func TestHandleHealth(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	s := newTestServer(t, backend, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleHealthDegraded(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestPostKBArticlesRequiresAuth(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/kb/articles", `{"title":"t"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
