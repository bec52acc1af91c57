package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// The backend probe gets its own deadline, independent of the general
// proxy timeout.
const healthCheckTimeout = 5 * time.Second

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIBaseURL+"/health", nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	resp, err := s.backend.Do(req)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "degraded",
			"backend": "unreachable: " + err.Error(),
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "degraded",
			"backend": "unhealthy: " + resp.Status,
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": "ok",
	})
}
