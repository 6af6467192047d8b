package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/middleware"
	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

type reportService interface {
	Create(ctx context.Context, companyID, createdBy string, req dto.CreateReportRequest) (*dto.ReportResponse, error)
	Get(ctx context.Context, companyID, id string) (*dto.ReportResponse, bool, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.SustainabilityReport, *models.Pagination, error)
	UpdateSection(ctx context.Context, companyID, id string, step models.WizardStep, req dto.UpdateSectionRequest) (*dto.SectionUpdateResponse, error)
	Next(ctx context.Context, companyID, id string) (*dto.ReportResponse, error)
	Previous(ctx context.Context, companyID, id string) (*dto.ReportResponse, error)
	GoTo(ctx context.Context, companyID, id string, req dto.GoToStepRequest) (*dto.ReportResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

// ReportHandler exposes sustainability reports and the wizard navigation.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// List godoc
// @Summary List sustainability reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param year query int false "Filter by reporting year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	year, ok := queryYear(c)
	if !ok {
		return
	}
	filter := models.ReportFilter{CompanyID: claims.CompanyID, Year: year}
	filter.Page, filter.PageSize = queryPage(c)
	reports, pagination, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination)
}

// Create godoc
// @Summary Start a sustainability report
// @Description One report per company and year; the wizard starts at the organization step.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateReportRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.reports.Create(c.Request.Context(), claims.CompanyID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Get godoc
// @Summary Get report with wizard progress
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	start := time.Now()
	report, hit, err := h.reports.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetProcessingTime(c, start)
	response.JSON(c, http.StatusOK, report, nil, middleware.ExtractMeta(c))
}

// UpdateSection godoc
// @Summary Save the fields of one wizard step
// @Description Keys are GRI indicator codes; codes missing from the catalog are stored and listed in unknown_indicators.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param step path string true "Wizard step"
// @Param payload body dto.UpdateSectionRequest true "Section payload"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/sections/{step} [put]
func (h *ReportHandler) UpdateSection(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	step := models.WizardStep(c.Param("step"))
	result, err := h.reports.UpdateSection(c.Request.Context(), claims.CompanyID, c.Param("id"), step, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Next godoc
// @Summary Advance the wizard one step
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/{id}/wizard/next [post]
func (h *ReportHandler) Next(c *gin.Context) {
	h.navigate(c, h.reports.Next)
}

// Previous godoc
// @Summary Move the wizard back one step
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/{id}/wizard/previous [post]
func (h *ReportHandler) Previous(c *gin.Context) {
	h.navigate(c, h.reports.Previous)
}

// GoTo godoc
// @Summary Jump to any wizard step
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param payload body dto.GoToStepRequest true "Target step"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/wizard/goto [post]
func (h *ReportHandler) GoTo(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.GoToStepRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.reports.GoTo(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Delete godoc
// @Summary Delete a report
// @Tags Reports
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 204
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.reports.Delete(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ReportHandler) navigate(c *gin.Context, move func(context.Context, string, string) (*dto.ReportResponse, error)) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	report, err := move(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
