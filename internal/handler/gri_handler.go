package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/middleware"
	"github.com/noah-isme/esg-report-api/pkg/gri"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

// GRIHandler lists the indicator catalog used by the wizard.
type GRIHandler struct {
	catalog *gri.Catalog
}

// NewGRIHandler constructs GRIHandler.
func NewGRIHandler(catalog *gri.Catalog) *GRIHandler {
	return &GRIHandler{catalog: catalog}
}

// List godoc
// @Summary List GRI indicators
// @Tags GRI
// @Produce json
// @Security BearerAuth
// @Param step query string false "Only indicators collected at this wizard step"
// @Success 200 {object} response.Envelope
// @Router /gri/indicators [get]
func (h *GRIHandler) List(c *gin.Context) {
	items := h.catalog.All()
	if step := strings.TrimSpace(c.Query("step")); step != "" {
		items = h.catalog.ByStep(step)
	}
	middleware.SetMeta(c, middleware.MetaCatalogVersion, h.catalog.Version)
	response.JSON(c, http.StatusOK, items, nil, middleware.ExtractMeta(c))
}
