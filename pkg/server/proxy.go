package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// proxy forwards the request 1:1 to the external backend path, preserving
// the upstream status and body. The backend owns all persistence and
// lifecycle rules; nothing is interpreted here.
func (s *Server) proxy(backendPath string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return s.forward(c, backendPath)
	}
}

func (s *Server) proxyTicket(c echo.Context) error {
	id := c.Param("id")
	if _, err := strconv.Atoi(id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ticket id"})
	}
	return s.forward(c, "/api/tickets/"+id)
}

func (s *Server) forward(c echo.Context, backendPath string) error {
	req := c.Request()

	target := s.cfg.APIBaseURL + backendPath
	if q := req.URL.RawQuery; q != "" {
		target += "?" + q
	}

	upstream, err := http.NewRequestWithContext(req.Context(), req.Method, target, req.Body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to build backend request: " + err.Error()})
	}
	if ct := req.Header.Get("Content-Type"); ct != "" {
		upstream.Header.Set("Content-Type", ct)
	}

	resp, err := s.backend.Do(upstream)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "Backend request failed: " + err.Error() + " - check that the backend service is reachable",
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Reading backend response failed: " + err.Error()})
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(resp.StatusCode, contentType, body)
}

// handleKBSearch validates the query and answers with the backend's ranked
// article summaries.
func (s *Server) handleKBSearch(c echo.Context) error {
	query := c.QueryParam("q")
	if len(strings.TrimSpace(query)) < 2 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Search query must be at least 2 characters"})
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
		}
		limit = n
	}

	articles, err := s.deps.KB.Search(c.Request().Context(), query, limit)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to search articles: " + err.Error()})
	}
	return c.JSON(http.StatusOK, articles)
}
