package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/middleware"
	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

type employeeTrainingService interface {
	Enroll(ctx context.Context, companyID, employeeID, createdBy string, req service.EnrollTrainingRequest) (*models.EmployeeTrainingDetail, error)
	Get(ctx context.Context, companyID, id string) (*models.EmployeeTrainingDetail, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]models.EmployeeTrainingDetail, bool, error)
	List(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, *models.Pagination, error)
	Update(ctx context.Context, companyID, id string, req service.UpdateTrainingRequest) (*models.EmployeeTrainingDetail, error)
	Delete(ctx context.Context, companyID, id string) error
	ExportCSV(ctx context.Context, filter models.EmployeeTrainingFilter) ([]byte, error)
}

// TrainingHandler exposes employee training records.
type TrainingHandler struct {
	trainings employeeTrainingService
}

// NewTrainingHandler constructs TrainingHandler.
func NewTrainingHandler(trainings employeeTrainingService) *TrainingHandler {
	return &TrainingHandler{trainings: trainings}
}

// ListByEmployee godoc
// @Summary List an employee's trainings with resolved status
// @Tags Trainings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/trainings [get]
func (h *TrainingHandler) ListByEmployee(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	start := time.Now()
	items, hit, err := h.trainings.ListByEmployee(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	middleware.SetProcessingTime(c, start)
	response.JSON(c, http.StatusOK, items, nil, middleware.ExtractMeta(c))
}

// Enroll godoc
// @Summary Enroll an employee in a training program
// @Tags Trainings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param payload body service.EnrollTrainingRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employees/{id}/trainings [post]
func (h *TrainingHandler) Enroll(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.EnrollTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.trainings.Enroll(c.Request.Context(), claims.CompanyID, c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// ListByProgram godoc
// @Summary List enrollments of a training program
// @Tags Trainings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /training-programs/{id}/trainings [get]
func (h *TrainingHandler) ListByProgram(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	filter := models.EmployeeTrainingFilter{CompanyID: claims.CompanyID, ProgramID: c.Param("id")}
	filter.Page, filter.PageSize = queryPage(c)
	items, pagination, err := h.trainings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a training record
// @Tags Trainings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 200 {object} response.Envelope
// @Router /trainings/{id} [get]
func (h *TrainingHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	detail, err := h.trainings.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update a training record
// @Tags Trainings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Param payload body service.UpdateTrainingRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Router /trainings/{id} [put]
func (h *TrainingHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.UpdateTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	detail, err := h.trainings.Update(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a training record
// @Tags Trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 204
// @Router /trainings/{id} [delete]
func (h *TrainingHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.trainings.Delete(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV godoc
// @Summary Export the training roster as CSV
// @Tags Trainings
// @Produce text/csv
// @Security BearerAuth
// @Param employeeId query string false "Filter by employee"
// @Param programId query string false "Filter by program"
// @Param department query string false "Filter by department"
// @Success 200 {file} binary
// @Router /trainings/export.csv [get]
func (h *TrainingHandler) ExportCSV(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	filter := models.EmployeeTrainingFilter{
		CompanyID:  claims.CompanyID,
		EmployeeID: strings.TrimSpace(c.Query("employeeId")),
		ProgramID:  strings.TrimSpace(c.Query("programId")),
		Department: strings.TrimSpace(c.Query("department")),
	}
	data, err := h.trainings.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("treinamentos_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
