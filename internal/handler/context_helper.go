package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/middleware"
	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

// requireClaims returns the caller's claims or writes 401 and reports false.
func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims := middleware.Claims(c)
	if claims == nil || claims.CompanyID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// queryYear reads ?year=; absent means 0 so services fall back to the current year.
func queryYear(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be numeric"))
		return 0, false
	}
	return year, true
}

func queryPage(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

func queryBool(c *gin.Context, key string) *bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}
