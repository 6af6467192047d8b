package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

type benefitService interface {
	Create(ctx context.Context, companyID, employeeID string, req service.CreateBenefitRequest) (*models.Benefit, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]models.Benefit, error)
	Delete(ctx context.Context, companyID, id string) error
}

// BenefitHandler exposes employee benefit endpoints.
type BenefitHandler struct {
	benefits benefitService
}

// NewBenefitHandler constructs BenefitHandler.
func NewBenefitHandler(benefits benefitService) *BenefitHandler {
	return &BenefitHandler{benefits: benefits}
}

// List godoc
// @Summary List an employee's benefits
// @Tags Benefits
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/benefits [get]
func (h *BenefitHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	items, err := h.benefits.ListByEmployee(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Grant a benefit to an employee
// @Tags Benefits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param payload body service.CreateBenefitRequest true "Benefit payload"
// @Success 201 {object} response.Envelope
// @Router /employees/{id}/benefits [post]
func (h *BenefitHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req service.CreateBenefitRequest
	if !bindJSON(c, &req) {
		return
	}
	benefit, err := h.benefits.Create(c.Request.Context(), claims.CompanyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, benefit)
}

// Delete godoc
// @Summary Remove a benefit
// @Tags Benefits
// @Security BearerAuth
// @Param id path string true "Benefit ID"
// @Success 204
// @Router /benefits/{id} [delete]
func (h *BenefitHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.benefits.Delete(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
