package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/middleware"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

type dashboardService interface {
	Training(ctx context.Context, companyID string, year int) (*dto.TrainingDashboard, bool, error)
	Benefits(ctx context.Context, companyID string, year int) (*dto.BenefitsDashboard, bool, error)
	Environmental(ctx context.Context, companyID string, year int) (*dto.EnvironmentalDashboard, bool, error)
	Stakeholders(ctx context.Context, companyID string, year int) (*dto.StakeholderDashboard, bool, error)
	Economic(ctx context.Context, companyID string, year int) (*dto.EconomicDashboard, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Training godoc
// @Summary Training dashboard
// @Description Hours, average score, status distribution and expiring certifications.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Reporting year. Defaults to the current year"
// @Success 200 {object} response.Envelope
// @Router /dashboards/training [get]
func (h *DashboardHandler) Training(c *gin.Context) {
	serveDashboard(c, h.service, func(ctx context.Context, company string, year int) (interface{}, bool, error) {
		return h.service.Training(ctx, company, year)
	})
}

// Benefits godoc
// @Summary Benefits dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Reporting year"
// @Success 200 {object} response.Envelope
// @Router /dashboards/benefits [get]
func (h *DashboardHandler) Benefits(c *gin.Context) {
	serveDashboard(c, h.service, func(ctx context.Context, company string, year int) (interface{}, bool, error) {
		return h.service.Benefits(ctx, company, year)
	})
}

// Environmental godoc
// @Summary Environmental dashboard
// @Description Emissions per scope plus water, waste and energy intensity.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Reporting year"
// @Success 200 {object} response.Envelope
// @Router /dashboards/environmental [get]
func (h *DashboardHandler) Environmental(c *gin.Context) {
	serveDashboard(c, h.service, func(ctx context.Context, company string, year int) (interface{}, bool, error) {
		return h.service.Environmental(ctx, company, year)
	})
}

// Stakeholders godoc
// @Summary Stakeholder engagement dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Reporting year"
// @Success 200 {object} response.Envelope
// @Router /dashboards/stakeholders [get]
func (h *DashboardHandler) Stakeholders(c *gin.Context) {
	serveDashboard(c, h.service, func(ctx context.Context, company string, year int) (interface{}, bool, error) {
		return h.service.Stakeholders(ctx, company, year)
	})
}

// Economic godoc
// @Summary Economic value distribution (DVA)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Reporting year"
// @Success 200 {object} response.Envelope
// @Router /dashboards/economic [get]
func (h *DashboardHandler) Economic(c *gin.Context) {
	serveDashboard(c, h.service, func(ctx context.Context, company string, year int) (interface{}, bool, error) {
		return h.service.Economic(ctx, company, year)
	})
}

func serveDashboard(c *gin.Context, svc dashboardService, load func(context.Context, string, int) (interface{}, bool, error)) {
	if svc == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	year, ok := queryYear(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := load(c.Request.Context(), claims.CompanyID, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetProcessingTime(c, start)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
