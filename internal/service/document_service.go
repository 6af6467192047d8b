package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
)

type documentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error
}

type documentFileStorage interface {
	SaveStream(filename string, r io.Reader) (string, int64, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type downloadSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (ownerID, relPath string, expiresAt time.Time, err error)
}

// DocumentUpload carries one file of a batch.
type DocumentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// DocumentDownload bundles file reader metadata for streaming.
type DocumentDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
	ExpiresAt time.Time
}

// DocumentLink is a signed, time-limited download URL.
type DocumentLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentServiceConfig holds validation limits.
type DocumentServiceConfig struct {
	MaxFileSize  int64
	MaxBatchSize int
	AllowedMIMEs []string
	APIPrefix    string
}

// DocumentService stores employee documents and serves signed downloads.
type DocumentService struct {
	repo      documentStore
	employees employeeFinder
	storage   documentFileStorage
	signer    downloadSigner
	metrics   *MetricsService
	audit     AuditWriter
	logger    *zap.Logger
	cfg       DocumentServiceConfig
	mimeSet   map[string]struct{}
	now       func() time.Time
}

// NewDocumentService constructs the service with defaults.
func NewDocumentService(repo documentStore, employees employeeFinder, storage documentFileStorage, signer downloadSigner, metrics *MetricsService, audit AuditWriter, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 10
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"image/png",
			"image/jpeg",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	return &DocumentService{
		repo:      repo,
		employees: employees,
		storage:   storage,
		signer:    signer,
		metrics:   metrics,
		audit:     audit,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
		now:       time.Now,
	}
}

// UploadBatch stores each file independently. A rejected file is reported in its item and never
// aborts the rest of the batch; only an empty or oversized batch fails as a whole.
func (s *DocumentService) UploadBatch(ctx context.Context, companyID, employeeID, actorID, category string, uploads []DocumentUpload) (*models.BatchUploadResult, error) {
	if len(uploads) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one file is required")
	}
	if len(uploads) > s.cfg.MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("batch exceeds %d files", s.cfg.MaxBatchSize))
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = "geral"
	}
	if employeeID != "" {
		if err := s.ensureEmployee(ctx, companyID, employeeID); err != nil {
			return nil, err
		}
	}

	result := &models.BatchUploadResult{Items: make([]models.BatchUploadItem, 0, len(uploads))}
	for _, upload := range uploads {
		doc, err := s.store(ctx, companyID, employeeID, actorID, category, upload)
		item := models.BatchUploadItem{Filename: upload.Filename}
		if err != nil {
			item.Error = appErrors.FromError(err).Message
			result.Failed++
			s.metrics.RecordUpload("failure")
			s.logger.Info("document rejected", zap.String("filename", upload.Filename), zap.Error(err))
		} else {
			item.Document = doc
			result.Succeeded++
			s.metrics.RecordUpload("success")
		}
		result.Items = append(result.Items, item)
	}
	if result.Succeeded > 0 {
		s.emitAudit(ctx, companyID, actorID, result)
	}
	return result, nil
}

// List returns non-deleted documents of an employee.
func (s *DocumentService) List(ctx context.Context, companyID, employeeID, category string) ([]models.Document, error) {
	if employeeID != "" {
		if err := s.ensureEmployee(ctx, companyID, employeeID); err != nil {
			return nil, err
		}
	}
	docs, err := s.repo.List(ctx, models.DocumentFilter{CompanyID: companyID, EmployeeID: employeeID, Category: category})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list documents")
	}
	return docs, nil
}

// Get returns document metadata of the company.
func (s *DocumentService) Get(ctx context.Context, companyID, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Internal(err, "failed to load document")
	}
	if doc.DeletedAt != nil || doc.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return doc, nil
}

// DownloadLink signs a time-limited URL for the document.
func (s *DocumentService) DownloadLink(ctx context.Context, companyID, id string) (*DocumentLink, error) {
	doc, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(doc.ID, doc.FilePath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to generate download token")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &DocumentLink{URL: fmt.Sprintf("%s/documents/download/%s", base, token), ExpiresAt: expiresAt}, nil
}

// Download validates token and opens the document file.
func (s *DocumentService) Download(ctx context.Context, token string) (*DocumentDownload, error) {
	docID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Internal(err, "failed to load document")
	}
	if doc.DeletedAt != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	if relPath != doc.FilePath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to open document file")
	}
	return &DocumentDownload{
		File:      file,
		Filename:  doc.Filename,
		MimeType:  doc.MimeType,
		SizeBytes: doc.SizeBytes,
		ExpiresAt: expiresAt,
	}, nil
}

// Delete marks a document deleted. The file stays on disk.
func (s *DocumentService) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Internal(err, "failed to delete document")
	}
	return nil
}

func (s *DocumentService) store(ctx context.Context, companyID, employeeID, actorID, category string, upload DocumentUpload) (*models.Document, error) {
	if upload.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := s.detectMime(upload)
	if err != nil {
		return nil, err
	}
	if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mime type %s not allowed", mimeType))
	}

	relPath := s.generateFilename(companyID, employeeID, upload.Filename)
	path, n, err := s.storage.SaveStream(relPath, io.LimitReader(upload.Content, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to persist document file")
	}
	if n > s.cfg.MaxFileSize {
		_ = s.storage.Delete(path)
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	if n == 0 {
		_ = s.storage.Delete(path)
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty file")
	}

	doc := &models.Document{
		CompanyID:  companyID,
		Category:   category,
		Filename:   filepath.Base(upload.Filename),
		FilePath:   path,
		MimeType:   mimeType,
		SizeBytes:  n,
		UploadedBy: actorID,
	}
	if employeeID != "" {
		emp := employeeID
		doc.EmployeeID = &emp
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		_ = s.storage.Delete(path)
		return nil, appErrors.Internal(err, "failed to create document metadata")
	}
	return doc, nil
}

// detectMime trusts the declared part header and sniffs the content otherwise.
func (s *DocumentService) detectMime(upload DocumentUpload) (string, error) {
	declared := strings.TrimSpace(strings.Split(upload.MimeType, ";")[0])
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Internal(err, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Internal(err, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return strings.TrimSpace(strings.Split(http.DetectContentType(header[:n]), ";")[0]), nil
}

func (s *DocumentService) generateFilename(companyID, employeeID, original string) string {
	owner := "company"
	if employeeID != "" {
		owner = sanitizeSegment(employeeID)
	}
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("documents/%s/%s/%s%s", sanitizeSegment(companyID), owner, uuid.NewString(), ext)
}

func (s *DocumentService) ensureEmployee(ctx context.Context, companyID, employeeID string) error {
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Internal(err, "failed to load employee")
	}
	if employee.CompanyID != companyID {
		return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	return nil
}

func (s *DocumentService) emitAudit(ctx context.Context, companyID, actorID string, result *models.BatchUploadResult) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]int{"succeeded": result.Succeeded, "failed": result.Failed})
	if err := s.audit.Create(ctx, &models.AuditLog{
		CompanyID: &companyID,
		UserID:    &actorID,
		Action:    models.AuditActionDocumentUpload,
		Resource:  "documents",
		NewValues: payload,
	}); err != nil {
		s.logger.Warn("failed to record upload audit log", zap.Error(err))
	}
}

func sanitizeSegment(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "na"
	}
	return out
}
