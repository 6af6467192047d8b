package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/internal/repository"
)

type fakeBenefitRepo struct {
	items map[string]*models.Benefit
}

func newFakeBenefitRepo(items ...models.Benefit) *fakeBenefitRepo {
	repo := &fakeBenefitRepo{items: map[string]*models.Benefit{}}
	for i := range items {
		b := items[i]
		repo.items[b.ID] = &b
	}
	return repo
}

func (r *fakeBenefitRepo) Create(ctx context.Context, benefit *models.Benefit) error {
	if benefit.ID == "" {
		benefit.ID = uuid.NewString()
	}
	clone := *benefit
	r.items[benefit.ID] = &clone
	return nil
}

func (r *fakeBenefitRepo) FindByID(ctx context.Context, id string) (*models.Benefit, error) {
	b, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBenefitRepo) ListByEmployee(ctx context.Context, employeeID string) ([]models.Benefit, error) {
	var out []models.Benefit
	for _, b := range r.items {
		if b.EmployeeID == employeeID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBenefitRepo) ListByCompany(ctx context.Context, companyID string) ([]models.Benefit, error) {
	var out []models.Benefit
	for _, b := range r.items {
		if b.CompanyID == companyID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBenefitRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeMetricRepo struct {
	emissions    []models.EmissionRecord
	resources    []models.ResourceRecord
	stakeholders []models.StakeholderEngagement
	economic     []models.EconomicValueItem
	listCalls    int
	failList     error
}

func (r *fakeMetricRepo) CreateEmission(ctx context.Context, rec *models.EmissionRecord) error {
	rec.ID = uuid.NewString()
	r.emissions = append(r.emissions, *rec)
	return nil
}

func (r *fakeMetricRepo) CreateResource(ctx context.Context, rec *models.ResourceRecord) error {
	rec.ID = uuid.NewString()
	r.resources = append(r.resources, *rec)
	return nil
}

func (r *fakeMetricRepo) CreateStakeholderEngagement(ctx context.Context, rec *models.StakeholderEngagement) error {
	rec.ID = uuid.NewString()
	r.stakeholders = append(r.stakeholders, *rec)
	return nil
}

func (r *fakeMetricRepo) CreateEconomicValue(ctx context.Context, rec *models.EconomicValueItem) error {
	rec.ID = uuid.NewString()
	r.economic = append(r.economic, *rec)
	return nil
}

func (r *fakeMetricRepo) ListEmissions(ctx context.Context, companyID string, year int) ([]models.EmissionRecord, error) {
	r.listCalls++
	if r.failList != nil {
		return nil, r.failList
	}
	var out []models.EmissionRecord
	for _, rec := range r.emissions {
		if rec.CompanyID == companyID && rec.Year == year {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeMetricRepo) ListResources(ctx context.Context, companyID string, year int) ([]models.ResourceRecord, error) {
	r.listCalls++
	var out []models.ResourceRecord
	for _, rec := range r.resources {
		if rec.CompanyID == companyID && rec.Year == year {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeMetricRepo) ListStakeholderEngagements(ctx context.Context, companyID string, year int) ([]models.StakeholderEngagement, error) {
	r.listCalls++
	var out []models.StakeholderEngagement
	for _, rec := range r.stakeholders {
		if rec.CompanyID == companyID && rec.Year == year {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeMetricRepo) ListEconomicValues(ctx context.Context, companyID string, year int) ([]models.EconomicValueItem, error) {
	r.listCalls++
	if r.failList != nil {
		return nil, r.failList
	}
	var out []models.EconomicValueItem
	for _, rec := range r.economic {
		if rec.CompanyID == companyID && rec.Year == year {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeReportRepo struct {
	items map[string]*models.SustainabilityReport
	// afterFind runs once FindByID has returned its copy, to interleave another writer.
	afterFind func()
}

func newFakeReportRepo(items ...models.SustainabilityReport) *fakeReportRepo {
	repo := &fakeReportRepo{items: map[string]*models.SustainabilityReport{}}
	for i := range items {
		r := items[i]
		repo.items[r.ID] = &r
	}
	return repo
}

func (r *fakeReportRepo) Create(ctx context.Context, report *models.SustainabilityReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	clone := *report
	r.items[report.ID] = &clone
	return nil
}

func (r *fakeReportRepo) FindByID(ctx context.Context, id string) (*models.SustainabilityReport, error) {
	report, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *report
	clone.Sections = models.ReportSections{}
	for k, v := range report.Sections {
		clone.Sections[k] = v
	}
	if r.afterFind != nil {
		r.afterFind()
	}
	return &clone, nil
}

func (r *fakeReportRepo) ExistsForYear(ctx context.Context, companyID string, year int) (bool, error) {
	for _, report := range r.items {
		if report.CompanyID == companyID && report.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReportRepo) List(ctx context.Context, filter models.ReportFilter) ([]models.SustainabilityReport, int, error) {
	var out []models.SustainabilityReport
	for _, report := range r.items {
		if report.CompanyID == filter.CompanyID && (filter.Year == 0 || report.Year == filter.Year) {
			out = append(out, *report)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, len(out), nil
}

func (r *fakeReportRepo) UpdateSection(ctx context.Context, id string, step models.WizardStep, data models.SectionData) (models.ReportSections, error) {
	report, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if report.Sections == nil {
		report.Sections = models.ReportSections{}
	}
	report.Sections[step] = data
	out := models.ReportSections{}
	for k, v := range report.Sections {
		out[k] = v
	}
	return out, nil
}

func (r *fakeReportRepo) UpdateStep(ctx context.Context, id string, step models.WizardStep, completedAt *time.Time) error {
	report, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	report.CurrentStep = step
	report.CompletedAt = completedAt
	return nil
}

func (r *fakeReportRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeExportRepo struct {
	jobs    map[string]*models.ReportExport
	updates []repository.UpdateExportParams
}

func newFakeExportRepo(jobs ...models.ReportExport) *fakeExportRepo {
	repo := &fakeExportRepo{jobs: map[string]*models.ReportExport{}}
	for i := range jobs {
		j := jobs[i]
		repo.jobs[j.ID] = &j
	}
	return repo
}

func (r *fakeExportRepo) Create(ctx context.Context, job *models.ReportExport) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	clone := *job
	r.jobs[job.ID] = &clone
	return nil
}

func (r *fakeExportRepo) GetByID(ctx context.Context, id string) (*models.ReportExport, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

func (r *fakeExportRepo) Update(ctx context.Context, id string, params repository.UpdateExportParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	r.updates = append(r.updates, params)
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.FilePath != nil {
		job.FilePath = params.FilePath
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *fakeExportRepo) ListByReport(ctx context.Context, reportID string) ([]models.ReportExport, error) {
	var out []models.ReportExport
	for _, job := range r.jobs {
		if job.ReportID == reportID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *fakeExportRepo) ListPending(ctx context.Context, limit int) ([]models.ReportExport, error) {
	var out []models.ReportExport
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusQueued || job.Status == models.ExportStatusProcessing {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *fakeExportRepo) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportExport, error) {
	var out []models.ReportExport
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

type fakeDocumentRepo struct {
	items   map[string]*models.Document
	failFor string
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{items: map[string]*models.Document{}}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	if r.failFor != "" && doc.Filename == r.failFor {
		return errors.New("insert failed")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UploadedAt = time.Now().UTC()
	clone := *doc
	r.items[doc.ID] = &clone
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *doc
	return &clone, nil
}

func (r *fakeDocumentRepo) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	var out []models.Document
	for _, doc := range r.items {
		if doc.CompanyID != filter.CompanyID || (!filter.IncludeDeleted && doc.DeletedAt != nil) {
			continue
		}
		if filter.EmployeeID != "" && (doc.EmployeeID == nil || *doc.EmployeeID != filter.EmployeeID) {
			continue
		}
		if filter.Category != "" && doc.Category != filter.Category {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (r *fakeDocumentRepo) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	doc, ok := r.items[id]
	if !ok || doc.DeletedAt != nil {
		return sql.ErrNoRows
	}
	doc.DeletedAt = &deletedAt
	return nil
}
