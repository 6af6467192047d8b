package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/esg-report-api/internal/models"
)

// ESGMetricRepository stores the raw rows behind the environmental, stakeholder and economic dashboards.
type ESGMetricRepository struct {
	db *sqlx.DB
}

// NewESGMetricRepository constructs the repository.
func NewESGMetricRepository(db *sqlx.DB) *ESGMetricRepository {
	return &ESGMetricRepository{db: db}
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

// CreateEmission inserts an emission record.
func (r *ESGMetricRepository) CreateEmission(ctx context.Context, rec *models.EmissionRecord) error {
	stamp(&rec.ID, &rec.CreatedAt)
	const query = `INSERT INTO emission_records (id, company_id, year, scope, source, tco2e, created_at)
VALUES (:id, :company_id, :year, :scope, :source, :tco2e, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create emission record: %w", err)
	}
	return nil
}

// CreateResource inserts a resource record.
func (r *ESGMetricRepository) CreateResource(ctx context.Context, rec *models.ResourceRecord) error {
	stamp(&rec.ID, &rec.CreatedAt)
	const query = `INSERT INTO resource_records (id, company_id, year, water_m3, waste_tonnes, recycled_tonnes, energy_mwh, created_at)
VALUES (:id, :company_id, :year, :water_m3, :waste_tonnes, :recycled_tonnes, :energy_mwh, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create resource record: %w", err)
	}
	return nil
}

// CreateStakeholderEngagement inserts an engagement score.
func (r *ESGMetricRepository) CreateStakeholderEngagement(ctx context.Context, rec *models.StakeholderEngagement) error {
	stamp(&rec.ID, &rec.CreatedAt)
	const query = `INSERT INTO stakeholder_engagements (id, company_id, year, stakeholder_group, score, notes, created_at)
VALUES (:id, :company_id, :year, :stakeholder_group, :score, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create stakeholder engagement: %w", err)
	}
	return nil
}

// CreateEconomicValue inserts a DVA line.
func (r *ESGMetricRepository) CreateEconomicValue(ctx context.Context, rec *models.EconomicValueItem) error {
	stamp(&rec.ID, &rec.CreatedAt)
	const query = `INSERT INTO economic_value_items (id, company_id, year, kind, stakeholder_group, description, amount, created_at)
VALUES (:id, :company_id, :year, :kind, :stakeholder_group, :description, :amount, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create economic value item: %w", err)
	}
	return nil
}

// ListEmissions returns a company's emissions for a year.
func (r *ESGMetricRepository) ListEmissions(ctx context.Context, companyID string, year int) ([]models.EmissionRecord, error) {
	var rows []models.EmissionRecord
	const query = `SELECT id, company_id, year, scope, source, tco2e, created_at FROM emission_records WHERE company_id = $1 AND year = $2 ORDER BY scope, created_at`
	if err := r.db.SelectContext(ctx, &rows, query, companyID, year); err != nil {
		return nil, fmt.Errorf("list emission records: %w", err)
	}
	return rows, nil
}

// ListResources returns a company's resource records for a year.
func (r *ESGMetricRepository) ListResources(ctx context.Context, companyID string, year int) ([]models.ResourceRecord, error) {
	var rows []models.ResourceRecord
	const query = `SELECT id, company_id, year, water_m3, waste_tonnes, recycled_tonnes, energy_mwh, created_at FROM resource_records WHERE company_id = $1 AND year = $2 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, companyID, year); err != nil {
		return nil, fmt.Errorf("list resource records: %w", err)
	}
	return rows, nil
}

// ListStakeholderEngagements returns a company's engagement scores for a year.
func (r *ESGMetricRepository) ListStakeholderEngagements(ctx context.Context, companyID string, year int) ([]models.StakeholderEngagement, error) {
	var rows []models.StakeholderEngagement
	const query = `SELECT id, company_id, year, stakeholder_group, score, notes, created_at FROM stakeholder_engagements WHERE company_id = $1 AND year = $2 ORDER BY stakeholder_group, created_at`
	if err := r.db.SelectContext(ctx, &rows, query, companyID, year); err != nil {
		return nil, fmt.Errorf("list stakeholder engagements: %w", err)
	}
	return rows, nil
}

// ListEconomicValues returns a company's DVA lines for a year.
func (r *ESGMetricRepository) ListEconomicValues(ctx context.Context, companyID string, year int) ([]models.EconomicValueItem, error) {
	var rows []models.EconomicValueItem
	const query = `SELECT id, company_id, year, kind, stakeholder_group, description, amount, created_at FROM economic_value_items WHERE company_id = $1 AND year = $2 ORDER BY kind, stakeholder_group`
	if err := r.db.SelectContext(ctx, &rows, query, companyID, year); err != nil {
		return nil, fmt.Errorf("list economic value items: %w", err)
	}
	return rows, nil
}
