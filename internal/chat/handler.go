package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magungh1/exporo-sme-export-assistant/internal/llm"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/middleware"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/respond"
)

const maxMessageLength = 4000

// Handler wires HTTP handlers to the pipeline.
type Handler struct {
	Pipeline *Pipeline
}

// NewHandler constructs a Handler.
func NewHandler(p *Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat/messages", h.postMessage)
	rg.GET("/chat/session", h.getSession)
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if len(req.Message) > maxMessageLength {
		respond.Error(c, http.StatusBadRequest, "validation_error", "message is too long", gin.H{"maxLength": maxMessageLength})
		return
	}

	result, err := h.Pipeline.ProcessUtterance(c.Request.Context(), middleware.UserIDFromContext(c), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyUtterance):
			respond.Error(c, http.StatusBadRequest, "validation_error", "message is required", nil)
		case errors.Is(err, ErrMissingUser):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing user identity", nil)
		case errors.Is(err, llm.ErrEngineTimeout):
			respond.Error(c, http.StatusGatewayTimeout, "engine_timeout", "the assistant took too long to answer, please try again", nil)
		case errors.Is(err, llm.ErrEngineUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "engine_unavailable", "the assistant is unavailable, please try again", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process message", nil)
		}
		return
	}

	// Picked up by the request logger.
	c.Set("sessionState", string(result.State))
	if result.Country != "" {
		c.Set("targetCountry", result.Country)
	}
	respond.OK(c, result)
}

func (h *Handler) getSession(c *gin.Context) {
	sess, err := h.Pipeline.Session(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrMissingUser) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing user identity", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
		return
	}
	respond.OK(c, sess)
}
