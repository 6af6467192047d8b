package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/service"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/response"
)

const documentFilesField = "files"

type documentService interface {
	UploadBatch(ctx context.Context, companyID, employeeID, actorID, category string, uploads []service.DocumentUpload) (*models.BatchUploadResult, error)
	List(ctx context.Context, companyID, employeeID, category string) ([]models.Document, error)
	DownloadLink(ctx context.Context, companyID, id string) (*service.DocumentLink, error)
	Download(ctx context.Context, token string) (*service.DocumentDownload, error)
	Delete(ctx context.Context, companyID, id string) error
}

// DocumentHandler manages employee document endpoints.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Upload godoc
// @Summary Upload a batch of employee documents
// @Description Every file is validated and stored on its own; rejected files are reported per item. Responds 201 when all files were stored and 207 otherwise.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param category formData string false "Document category"
// @Param files formData file true "Documents (repeat the field per file)"
// @Success 201 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /employees/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart form required"))
		return
	}
	headers := form.File[documentFilesField]
	if len(headers) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at least one file is required"))
		return
	}

	uploads := make([]service.DocumentUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, header := range headers {
		src, openErr := header.Open()
		if openErr != nil {
			response.Error(c, appErrors.Wrap(openErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
			return
		}
		opened = append(opened, src)
		uploads = append(uploads, service.DocumentUpload{
			Filename: header.Filename,
			Size:     header.Size,
			MimeType: header.Header.Get("Content-Type"),
			Content:  src,
		})
	}

	result, err := h.service.UploadBatch(c.Request.Context(), claims.CompanyID, c.Param("id"), claims.UserID, c.PostForm("category"), uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}

// List godoc
// @Summary List employee documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param category query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), claims.CompanyID, c.Param("id"), strings.TrimSpace(c.Query("category")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Link godoc
// @Summary Issue a signed download URL for a document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Link(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	link, err := h.service.DownloadLink(c.Request.Context(), claims.CompanyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download a document via signed token
// @Tags Documents
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /documents/download/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.service.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.SizeBytes, result.MimeType, result.File, nil)
}

// Delete godoc
// @Summary Soft delete a document
// @Tags Documents
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.CompanyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
