package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/respond"
)

// RegisterRoutes exposes the catalog under the given group.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/countries", listCountries)
	rg.GET("/categories", listCategories)
}

func listCountries(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"items": Countries()})
}

func listCategories(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{"items": Categories()})
}
