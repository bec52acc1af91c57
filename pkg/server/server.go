package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nullticket/helpdesk/pkg/auth"
	"github.com/nullticket/helpdesk/pkg/chat"
	"github.com/nullticket/helpdesk/pkg/config"
	"github.com/nullticket/helpdesk/pkg/kb"
)

// Deps are the collaborators the HTTP surface drives. Interfaces from the
// chat package are used so tests can substitute mocks.
type Deps struct {
	SelfService chat.SelfService
	Completer   chat.CompletionClient
	Tickets     chat.TicketCreator
	KB          *kb.Client
	Auth        *auth.Handler
}

type Server struct {
	cfg     *config.Config
	deps    Deps
	e       *echo.Echo
	backend *http.Client // 1:1 proxy forwards to the ticket/KB backend
}

func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		deps:    deps,
		e:       echo.New(),
		backend: &http.Client{Timeout: cfg.HTTPTimeout},
	}

	s.e.HideBanner = true
	s.e.Use(middleware.Logger())
	s.e.Use(middleware.Recover())

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.e

	e.GET("/api/health", s.handleHealth)

	e.POST("/api/chat", s.handleChat)
	e.GET("/ws/chat", s.handleChatSocket)

	e.POST("/api/auth/verify", s.deps.Auth.HandleLogin)
	e.GET("/api/auth/me", s.deps.Auth.HandleGetMe, s.deps.Auth.AuthMiddleware)

	e.GET("/api/kb/search", s.handleKBSearch)
	e.GET("/api/kb/articles", s.proxy("/api/kb/articles/"))
	e.POST("/api/kb/articles", s.proxy("/api/kb/articles/"), s.deps.Auth.AuthMiddleware)

	e.GET("/api/tickets", s.proxy("/api/tickets/"))
	e.POST("/api/tickets", s.proxy("/api/tickets/"))
	e.GET("/api/tickets/:id", s.proxyTicket)
	e.PUT("/api/tickets/:id", s.proxyTicket)
}

// Handler exposes the underlying mux for tests.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start() error { return s.e.Start(s.cfg.Addr) }
