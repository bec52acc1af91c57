package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nullticket/helpdesk/pkg/chat"
)

var upgrader = websocket.Upgrader{}

// WebsocketMessage is the server-to-client event envelope.
type WebsocketMessage struct {
	Type    string `json:"type"`
	Sender  string `json:"sender"`
	Content any    `json:"content"`
}

// clientEvent is what the browser sends: a free-text message or a decision
// on a pending ticket proposal.
type clientEvent struct {
	Type    string `json:"type"` // "message", "confirm_ticket", "decline_ticket"
	Content string `json:"content"`
}

func sendWsMessage(ws *websocket.Conn, msgType, sender string, content any) {
	message := WebsocketMessage{
		Type:    msgType,
		Sender:  sender,
		Content: content,
	}
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("server: failed to marshal WebSocket message: %v", err)
		return
	}
	if err := ws.WriteMessage(websocket.TextMessage, jsonMsg); err != nil {
		log.Printf("server: WebSocket write error: %v", err)
	}
}

// handleChatSocket owns one chat.Session per connection and drives the
// confirm/decline flow over the socket. Conversation state is volatile: it
// lives exactly as long as the connection.
func (s *Server) handleChatSocket(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("upgrading to websocket: %w", err)
	}
	defer ws.Close()
	log.Println("server: chat client connected via WebSocket")

	session := chat.NewSession(s.deps.SelfService, s.deps.Completer, s.deps.Tickets)
	if transcript := session.Transcript(); len(transcript) > 0 {
		sendWsMessage(ws, "assistant_response", "Assistant", transcript[0].Content)
	}

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			log.Println("server: WebSocket read error:", err)
			return nil
		}

		var ev clientEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			sendWsMessage(ws, "system_error", "System", "invalid event payload")
			continue
		}

		ctx := c.Request().Context()
		switch ev.Type {
		case "message":
			s.handleSocketMessage(ctx, ws, session, ev.Content)
		case "confirm_ticket":
			result, err := session.Confirm(ctx)
			switch {
			case errors.Is(err, chat.ErrBusy):
				sendWsMessage(ws, "system_error", "System", err.Error())
			case result == nil:
				// nothing pending
			case err != nil:
				sendWsMessage(ws, "assistant_response", "Assistant", result.Reply)
			default:
				sendWsMessage(ws, "ticket_created", "Assistant", result.Ticket)
				sendWsMessage(ws, "assistant_response", "Assistant", result.Reply)
			}
		case "decline_ticket":
			if result := session.Decline(); result != nil {
				sendWsMessage(ws, "assistant_response", "Assistant", result.Reply)
			}
		default:
			sendWsMessage(ws, "system_error", "System", "unknown event type: "+ev.Type)
		}
	}
}

func (s *Server) handleSocketMessage(ctx context.Context, ws *websocket.Conn, session *chat.Session, text string) {
	result, err := session.Send(ctx, text)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return // nothing to do
	case errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrAwaitingConfirmation):
		sendWsMessage(ws, "system_error", "System", err.Error())
		return
	case err != nil:
		// The session already appended the failure to the transcript.
		sendWsMessage(ws, "assistant_response", "Assistant", result.Reply)
		return
	}

	sendWsMessage(ws, "assistant_response", "Assistant", result.Reply)
	if result.PendingIntent != nil {
		sendWsMessage(ws, "ticket_prompt", "Assistant", result.PendingIntent)
	}
}
