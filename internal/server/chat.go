package server

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/adhikar-ai/adhikar/internal/agent"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/session"
)

// ChatHandler exposes the conversation pipeline over HTTP.
type ChatHandler struct {
	Orch          *agent.Orchestrator
	Store         session.Store
	MaxMessageLen int
}

func (h *ChatHandler) Register(e *echo.Echo) {
	e.POST("/chat", h.chat)
	e.GET("/chat/:session_id/history", h.history)
	e.GET("/sessions/:session_id", h.sessionInfo)
}

func (h *ChatHandler) chat(c echo.Context) error {
	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message cannot be empty")
	}
	// limit is in characters, not bytes
	if h.MaxMessageLen > 0 && utf8.RuneCountInString(req.Message) > h.MaxMessageLen {
		return echo.NewHTTPError(http.StatusBadRequest, "message too long")
	}

	resp, err := h.Orch.Process(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) history(c echo.Context) error {
	id := c.Param("session_id")
	if _, ok := h.Store.Get(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	turns := h.Store.History(id)
	if turns == nil {
		turns = []models.Turn{}
	}
	return c.JSON(http.StatusOK, turns)
}

func (h *ChatHandler) sessionInfo(c echo.Context) error {
	id := c.Param("session_id")
	sess, ok := h.Store.Get(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"title":      sess.Title,
	})
}
