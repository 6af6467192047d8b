package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

type trainingProgramService interface {
	List(ctx context.Context, filter models.TrainingProgramFilter) ([]models.TrainingProgram, *models.Pagination, error)
	Get(ctx context.Context, companyID, id string) (*models.TrainingProgram, error)
	Create(ctx context.Context, companyID string, req service.TrainingProgramRequest) (*models.TrainingProgram, error)
	Update(ctx context.Context, companyID, id string, req service.TrainingProgramRequest) (*models.TrainingProgram, error)
	Delete(ctx context.Context, companyID, id string) error
}

// TrainingProgramHandler exposes training program CRUD.
type TrainingProgramHandler struct {
	programs trainingProgramService
}

// NewTrainingProgramHandler constructs the handler.
func NewTrainingProgramHandler(programs trainingProgramService) *TrainingProgramHandler {
	return &TrainingProgramHandler{programs: programs}
}

// List godoc
// @Summary List training programs
// @Tags Training Programs
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name"
// @Param category query string false "Filter by category"
// @Param mandatory query bool false "Filter by mandatory flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /training-programs [get]
func (h *TrainingProgramHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	filter := models.TrainingProgramFilter{
		CompanyID: claims.CompanyID,
		Search:    strings.TrimSpace(c.Query("search")),
		Category:  strings.TrimSpace(c.Query("category")),
		Mandatory: queryBool(c, "mandatory"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	filter.Page, filter.PageSize = queryPage(c)
	programs, pagination, err := h.programs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, pagination)
}

// Get godoc
// @Summary Get training program
// @Tags Training Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /training-programs/{id} [get]
func (h *TrainingProgramHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	program, err := h.programs.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Create godoc
// @Summary Create training program
// @Tags Training Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.TrainingProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Router /training-programs [post]
func (h *TrainingProgramHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.TrainingProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.programs.Create(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Update godoc
// @Summary Update training program
// @Description Changing the program window re-resolves the status of every enrollment.
// @Tags Training Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body service.TrainingProgramRequest true "Program payload"
// @Success 200 {object} response.Envelope
// @Router /training-programs/{id} [put]
func (h *TrainingProgramHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.TrainingProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.programs.Update(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Delete godoc
// @Summary Delete training program
// @Tags Training Programs
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 204
// @Router /training-programs/{id} [delete]
func (h *TrainingProgramHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.programs.Delete(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
