package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nullticket/helpdesk/pkg/chat"
	"github.com/nullticket/helpdesk/pkg/errs"
)

type chatRequest struct {
	Message string         `json:"message"`
	Context []chat.Message `json:"context"`
}

type chatResponse struct {
	Response      string             `json:"response"`
	NeedsTicket   bool               `json:"needsTicket"`
	TicketDetails *chat.TicketIntent `json:"ticketDetails,omitempty"`
}

// handleChat is the stateless completion endpoint: the caller supplies its
// own context window and owns the confirmation flow. The websocket endpoint
// covers the stateful variant.
func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}

	completion, err := s.deps.Completer.Complete(c.Request().Context(), req.Message, req.Context)
	if err != nil {
		return c.JSON(chatErrorStatus(err), map[string]string{"error": err.Error()})
	}

	reply, intent := chat.ParseCompletion(req.Message, completion)
	return c.JSON(http.StatusOK, chatResponse{
		Response:      reply,
		NeedsTicket:   intent != nil,
		TicketDetails: intent,
	})
}

// chatErrorStatus maps the error taxonomy onto response codes, forwarding
// the upstream status where one exists.
func chatErrorStatus(err error) int {
	switch errs.KindOf(err) {
	case errs.KindUpstream:
		if status := errs.StatusOf(err); status > 0 {
			return status
		}
		return http.StatusBadGateway
	case errs.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
