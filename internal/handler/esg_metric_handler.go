package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

type esgMetricService interface {
	RecordEmission(ctx context.Context, companyID string, req service.EmissionRequest) (*models.EmissionRecord, error)
	RecordResource(ctx context.Context, companyID string, req service.ResourceRequest) (*models.ResourceRecord, error)
	RecordStakeholderEngagement(ctx context.Context, companyID string, req service.StakeholderRequest) (*models.StakeholderEngagement, error)
	RecordEconomicValue(ctx context.Context, companyID string, req service.EconomicValueRequest) (*models.EconomicValueItem, error)
}

// ESGMetricHandler records the rows behind the dashboards.
type ESGMetricHandler struct {
	metrics esgMetricService
}

// NewESGMetricHandler constructs ESGMetricHandler.
func NewESGMetricHandler(metrics esgMetricService) *ESGMetricHandler {
	return &ESGMetricHandler{metrics: metrics}
}

// Emission godoc
// @Summary Record a GHG emission
// @Tags ESG Metrics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EmissionRequest true "Emission payload"
// @Success 201 {object} response.Envelope
// @Router /metrics/emissions [post]
func (h *ESGMetricHandler) Emission(c *gin.Context) {
	record(c, h.metrics.RecordEmission)
}

// Resource godoc
// @Summary Record water, waste and energy figures
// @Tags ESG Metrics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Router /metrics/resources [post]
func (h *ESGMetricHandler) Resource(c *gin.Context) {
	record(c, h.metrics.RecordResource)
}

// Stakeholder godoc
// @Summary Record a stakeholder engagement score
// @Tags ESG Metrics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.StakeholderRequest true "Engagement payload"
// @Success 201 {object} response.Envelope
// @Router /metrics/stakeholders [post]
func (h *ESGMetricHandler) Stakeholder(c *gin.Context) {
	record(c, h.metrics.RecordStakeholderEngagement)
}

// EconomicValue godoc
// @Summary Record generated or distributed economic value
// @Tags ESG Metrics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EconomicValueRequest true "Economic value payload"
// @Success 201 {object} response.Envelope
// @Router /metrics/economic-values [post]
func (h *ESGMetricHandler) EconomicValue(c *gin.Context) {
	record(c, h.metrics.RecordEconomicValue)
}

func record[Req any, Row any](c *gin.Context, fn func(context.Context, string, Req) (*Row, error)) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req Req
	if !bindJSON(c, &req) {
		return
	}
	row, err := fn(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}
