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

type employeeService interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error)
	Get(ctx context.Context, companyID, id string) (*models.Employee, error)
	Create(ctx context.Context, companyID string, req service.CreateEmployeeRequest) (*models.Employee, error)
	Update(ctx context.Context, companyID, id string, req service.UpdateEmployeeRequest) (*models.Employee, error)
	Deactivate(ctx context.Context, companyID, id string) error
}

// EmployeeHandler exposes employee endpoints.
type EmployeeHandler struct {
	employees employeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees employeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name, email or document"
// @Param department query string false "Filter by department"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	filter := models.EmployeeFilter{
		CompanyID:  claims.CompanyID,
		Search:     strings.TrimSpace(c.Query("search")),
		Department: strings.TrimSpace(c.Query("department")),
		Active:     queryBool(c, "active"),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	filter.Page, filter.PageSize = queryPage(c)

	employees, pagination, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get employee detail
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	employee, err := h.employees.Get(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), claims.CompanyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Update godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param payload body service.UpdateEmployeeRequest true "Employee payload"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Delete godoc
// @Summary Deactivate employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 204
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.employees.Deactivate(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
