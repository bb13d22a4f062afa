package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/internal/auth"
	"github.com/prasraka/docvoice/internal/websocket"
	"github.com/prasraka/docvoice/web"
)

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler, hub *websocket.ProgressHub, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "docvoice-server",
		})
	})

	// Browser UI
	e.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, web.IndexHTML)
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/session", h.CreateSession)
	v1.DELETE("/session", h.ResetSession)

	v1.POST("/media/audio", h.UploadAudio)
	v1.POST("/media/image", h.UploadImage)

	v1.POST("/consultation", h.RunConsultation)
	v1.GET("/consultation/audio", h.GetAudio)

	// WebSocket endpoint with JWT validation
	e.GET("/ws/progress", func(c echo.Context) error {
		return progressWithAuth(hub, c, logger)
	})
}

// progressWithAuth upgrades the connection after validating the session
// token. Browsers cannot set headers on WebSocket requests, so the
// token is also accepted as a query parameter.
func progressWithAuth(hub *websocket.ProgressHub, c echo.Context, logger *zap.Logger) error {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}

	if token == "" {
		logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Session token is required",
		})
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired session token",
		})
	}

	logger.Info("WebSocket connection authenticated",
		zap.String("sessionID", claims.SessionID))

	return websocket.HandleProgress(hub, c, claims.SessionID, logger)
}
