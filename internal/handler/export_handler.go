package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/service"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

type reportExportService interface {
	RequestExport(ctx context.Context, companyID, reportID, actorID string, req dto.ExportRequest) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, companyID, id string) (*dto.ExportJobResponse, error)
	ListByReport(ctx context.Context, companyID, reportID string) ([]dto.ExportJobResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes asynchronous report exports.
type ExportHandler struct {
	exports reportExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports reportExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Request godoc
// @Summary Queue a report export
// @Description Renders the report as PDF or DOCX in the background; poll the job for the download URL.
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param payload body dto.ExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /reports/{id}/exports [post]
func (h *ExportHandler) Request(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.ExportRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.exports.RequestExport(c.Request.Context(), claims.CompanyID, c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// ListByReport godoc
// @Summary List export jobs of a report
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/exports [get]
func (h *ExportHandler) ListByReport(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	jobs, err := h.exports.ListByReport(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, nil)
}

// Status godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	job, err := h.exports.GetStatus(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	size := int64(-1)
	if info, statErr := result.File.Stat(); statErr == nil {
		size = info.Size()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, result.ContentType, result.File, nil)
}
