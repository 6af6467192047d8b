package models

import "time"

// EmissionRecord is a greenhouse gas inventory line.
type EmissionRecord struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Year      int       `db:"year" json:"year"`
	Scope     int       `db:"scope" json:"scope"`
	Source    string    `db:"source" json:"source"`
	TCO2e     float64   `db:"tco2e" json:"tco2e"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ResourceRecord captures water, waste and energy figures for a period.
type ResourceRecord struct {
	ID             string    `db:"id" json:"id"`
	CompanyID      string    `db:"company_id" json:"company_id"`
	Year           int       `db:"year" json:"year"`
	WaterM3        float64   `db:"water_m3" json:"water_m3"`
	WasteTonnes    float64   `db:"waste_tonnes" json:"waste_tonnes"`
	RecycledTonnes float64   `db:"recycled_tonnes" json:"recycled_tonnes"`
	EnergyMWh      float64   `db:"energy_mwh" json:"energy_mwh"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StakeholderEngagement records a satisfaction score for a stakeholder group.
type StakeholderEngagement struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Year      int       `db:"year" json:"year"`
	Group     string    `db:"stakeholder_group" json:"group"`
	Score     float64   `db:"score" json:"score"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EconomicValueKind separates generated from distributed value.
type EconomicValueKind string

const (
	EconomicValueGenerated   EconomicValueKind = "generated"
	EconomicValueDistributed EconomicValueKind = "distributed"
)

// EconomicValueItem is one line of the added-value statement.
type EconomicValueItem struct {
	ID          string            `db:"id" json:"id"`
	CompanyID   string            `db:"company_id" json:"company_id"`
	Year        int               `db:"year" json:"year"`
	Kind        EconomicValueKind `db:"kind" json:"kind"`
	Group       string            `db:"stakeholder_group" json:"group"`
	Description string            `db:"description" json:"description"`
	Amount      float64           `db:"amount" json:"amount"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}
