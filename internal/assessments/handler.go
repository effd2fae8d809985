package assessments

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/magungh1/exporo-sme-export-assistant/internal/catalog"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/middleware"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the history service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/assessments", h.list)
}

func (h *Handler) list(c *gin.Context) {
	filter := ""
	if raw := strings.TrimSpace(c.Query("country")); raw != "" {
		country, ok := catalog.LookupCountry(raw)
		if !ok {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown country", gin.H{"country": raw})
			return
		}
		filter = country.Name
	}

	entries, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assessments", nil)
		return
	}
	items := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if filter == "" || e.Country == filter {
			items = append(items, e)
		}
	}
	respond.OK(c, gin.H{"items": items})
}
