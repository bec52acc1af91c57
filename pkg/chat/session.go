package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nullticket/helpdesk/pkg/tickets"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a session transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the session's confirmation state. While a ticket proposal is
// pending, free-text submissions are rejected; the confirmation decision
// exclusively owns the next input.
type State int

const (
	StateIdle State = iota
	StateAwaitingConfirmation
)

var (
	// ErrBusy rejects a submission while a request is in flight. The
	// reference behavior is to ignore such input, never to interleave it.
	ErrBusy = errors.New("a request is already in flight")

	// ErrAwaitingConfirmation rejects free text while a ticket proposal
	// is pending.
	ErrAwaitingConfirmation = errors.New("a ticket proposal is awaiting confirmation")

	ErrEmptyMessage = errors.New("message is empty")
)

// SelfService answers a message deterministically, or reports ok=false to
// fall through to the AI path.
type SelfService interface {
	Respond(ctx context.Context, message string) (answer string, ok bool)
}

// CompletionClient produces a raw AI completion for a message plus history.
type CompletionClient interface {
	Complete(ctx context.Context, message string, history []Message) (string, error)
}

// TicketCreator submits a confirmed ticket to the ticket backend.
type TicketCreator interface {
	Create(ctx context.Context, t tickets.NewTicket) (*tickets.Ticket, error)
}

const (
	greeting     = "Hello! How can I help you today?"
	declineReply = "No problem! If you need help with anything else, feel free to ask."

	chatbotSource = "chatbot"
)

// Session owns one conversation: its append-only transcript, the pending
// ticket proposal (at most one), and the confirmation state. It is safe for
// concurrent use; at most one pipeline runs at a time.
type Session struct {
	selfService SelfService
	completer   CompletionClient
	tickets     TicketCreator

	mu         sync.Mutex
	loading    bool
	state      State
	transcript []Message
	pending    *TicketIntent
}

func NewSession(selfService SelfService, completer CompletionClient, creator TicketCreator) *Session {
	return &Session{
		selfService: selfService,
		completer:   completer,
		tickets:     creator,
		transcript:  []Message{{Role: RoleAssistant, Content: greeting}},
	}
}

// TurnResult reports what a submission or decision appended to the transcript.
type TurnResult struct {
	Reply       string
	SelfService bool
	// PendingIntent is set when the session moved to AwaitingConfirmation.
	PendingIntent *TicketIntent
	// Ticket is set when a confirmed ticket was created.
	Ticket *tickets.Ticket
}

// Send processes one user turn: self-service rules first, then the AI path
// with ticket-intent detection. On ticket intent the session transitions to
// AwaitingConfirmation and blocks further free text until Confirm or
// Decline.
//
// Completion failures are still appended to the transcript (a lost support
// request must never fail silently) and returned to the caller.
func (s *Session) Send(ctx context.Context, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if s.state == StateAwaitingConfirmation {
		s.mu.Unlock()
		return nil, ErrAwaitingConfirmation
	}
	s.loading = true
	// Context for the AI call is the transcript before this turn.
	history := make([]Message, len(s.transcript))
	copy(history, s.transcript)
	s.transcript = append(s.transcript, Message{Role: RoleUser, Content: text})
	s.mu.Unlock()

	if s.selfService != nil {
		if answer, ok := s.selfService.Respond(ctx, text); ok {
			s.finishTurn(answer, nil)
			return &TurnResult{Reply: answer, SelfService: true}, nil
		}
	}

	completion, err := s.completer.Complete(ctx, text, history)
	if err != nil {
		reply := "Error: " + err.Error()
		s.finishTurn(reply, nil)
		return &TurnResult{Reply: reply}, err
	}

	reply, intent := ParseCompletion(text, completion)
	s.finishTurn(reply, intent)
	return &TurnResult{Reply: reply, PendingIntent: intent}, nil
}

func (s *Session) finishTurn(reply string, intent *TicketIntent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: reply})
	if intent != nil {
		s.pending = intent
		s.state = StateAwaitingConfirmation
	}
	s.loading = false
}

// Confirm submits the pending ticket proposal. Success and failure both
// append an assistant turn, clear the pending intent, and return to idle;
// creation is attempted at most once per proposal. Confirming with nothing
// pending is a no-op.
func (s *Session) Confirm(ctx context.Context) (*TurnResult, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if s.state != StateAwaitingConfirmation || s.pending == nil {
		s.mu.Unlock()
		return nil, nil
	}
	intent := *s.pending
	s.loading = true
	s.mu.Unlock()

	ticket, err := s.tickets.Create(ctx, tickets.NewTicket{
		Title:       intent.Title,
		Description: intent.Description,
		Priority:    intent.Priority,
		Category:    intent.Category,
		Source:      chatbotSource,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.state = StateIdle
	s.loading = false

	if err != nil {
		reply := "Ticket creation failed: " + err.Error()
		s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: reply})
		return &TurnResult{Reply: reply}, err
	}

	reply := ticketCreatedReply(ticket)
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: reply})
	return &TurnResult{Reply: reply, Ticket: ticket}, nil
}

// Decline discards the pending ticket proposal with no side effect on the
// ticket backend. Declining with nothing pending is a no-op, not an error.
func (s *Session) Decline() *TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingConfirmation {
		return nil
	}
	s.pending = nil
	s.state = StateIdle
	s.transcript = append(s.transcript, Message{Role: RoleAssistant, Content: declineReply})
	return &TurnResult{Reply: declineReply}
}

func ticketCreatedReply(t *tickets.Ticket) string {
	return fmt.Sprintf("**Ticket Created Successfully!**\n\n**Ticket ID:** %s\n**Title:** %s\n**Priority:** %s\n**Status:** %s\n\nOur support team will review your ticket and get back to you soon. You can track the progress at: /tickets/%d",
		t.TicketNumber, t.Title, t.Priority, t.Status, t.ID)
}

// State returns the current confirmation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PendingIntent returns a copy of the pending ticket proposal, or nil.
func (s *Session) PendingIntent() *TicketIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	intent := *s.pending
	return &intent
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}
