package tickets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nullticket/helpdesk/pkg/errs"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
	PriorityUrgent   = "urgent"

	DefaultCategory = "general"
)

// ValidPriority reports whether p is a priority the backend accepts.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical, PriorityUrgent:
		return true
	}
	return false
}

// NewTicket is the creation payload sent to the ticket backend.
type NewTicket struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Source      string `json:"source,omitempty"`
}

// Ticket is the backend's view of a created ticket. Only the fields this
// service reads are declared.
type Ticket struct {
	ID           int    `json:"id"`
	TicketNumber string `json:"ticket_number"`
	Title        string `json:"title"`
	Priority     string `json:"priority"`
	Status       string `json:"status"`
	Category     string `json:"category,omitempty"`
}

// Client creates tickets in the external ticket backend.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Create submits a new ticket. Title and description are required; priority
// and category fall back to their defaults. The backend must answer with a
// JSON object carrying id and ticket_number - anything else (notably the
// documented empty-array bug) is reported as an invalid response rather
// than papered over. Creation is never retried automatically.
func (c *Client) Create(ctx context.Context, t NewTicket) (*Ticket, error) {
	if strings.TrimSpace(t.Title) == "" {
		return nil, fmt.Errorf("ticket title is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return nil, fmt.Errorf("ticket description is required")
	}
	if !ValidPriority(t.Priority) {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding ticket payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tickets/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building ticket request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Network("ticket creation failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errs.Network("reading ticket response failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.Upstream(resp.StatusCode, "ticket creation failed: "+strings.TrimSpace(string(body)))
	}

	return decodeTicket(body)
}

// decodeTicket validates the response shape before trusting it. The backend
// has been observed returning an empty array instead of the created ticket;
// that is an upstream contract violation and surfaces as invalid_response.
func decodeTicket(body []byte) (*Ticket, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errs.InvalidResponse("ticket backend returned non-JSON response")
	}

	switch raw.(type) {
	case map[string]any:
	case []any:
		return nil, errs.InvalidResponse("ticket backend returned an array instead of a ticket object")
	default:
		return nil, errs.InvalidResponse("ticket backend returned an unexpected response shape")
	}

	var ticket Ticket
	if err := json.Unmarshal(body, &ticket); err != nil {
		return nil, errs.InvalidResponse("ticket backend response has unexpected field types")
	}
	if ticket.ID <= 0 || ticket.TicketNumber == "" {
		return nil, errs.InvalidResponse("ticket backend response is missing id or ticket_number")
	}
	return &ticket, nil
}
