package dto

import "github.com/noah-isme/esg-report-api/internal/models"

// ShareItem is one labelled slice of a total.
type ShareItem struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// TrainingDashboard summarises a company's training records for a year.
type TrainingDashboard struct {
	Year                   int                           `json:"year"`
	TotalRecords           int                           `json:"total_records"`
	TotalHours             float64                       `json:"total_hours"`
	HoursPerEmployee       float64                       `json:"hours_per_employee"`
	AverageScore           float64                       `json:"average_score"`
	StatusCounts           map[models.TrainingStatus]int `json:"status_counts"`
	MandatoryCompletionPct float64                       `json:"mandatory_completion_pct"`
	ExpiringSoon           int                           `json:"expiring_soon"`
	Expired                int                           `json:"expired"`
}

// BenefitsDashboard summarises benefit costs.
type BenefitsDashboard struct {
	Year                      int         `json:"year"`
	TotalMonthlyCost          float64     `json:"total_monthly_cost"`
	ByType                    []ShareItem `json:"by_type"`
	Beneficiaries             int         `json:"beneficiaries"`
	AverageCostPerBeneficiary float64     `json:"average_cost_per_beneficiary"`
	CoveragePct               float64     `json:"coverage_pct"`
}

// EnvironmentalDashboard summarises emissions and resource usage.
type EnvironmentalDashboard struct {
	Year             int         `json:"year"`
	TotalTCO2e       float64     `json:"total_tco2e"`
	Scopes           []ShareItem `json:"scopes"`
	WaterM3          float64     `json:"water_m3"`
	WasteTonnes      float64     `json:"waste_tonnes"`
	RecycledTonnes   float64     `json:"recycled_tonnes"`
	EnergyMWh        float64     `json:"energy_mwh"`
	Headcount        int         `json:"headcount"`
	WaterPerEmployee float64     `json:"water_per_employee"`
	WastePerEmployee float64     `json:"waste_per_employee"`
	RecyclingPct     float64     `json:"recycling_pct"`
}

// GroupAverage is the mean score for one stakeholder group.
type GroupAverage struct {
	Group   string  `json:"group"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// StakeholderDashboard summarises engagement scores.
type StakeholderDashboard struct {
	Year         int            `json:"year"`
	AverageScore float64        `json:"average_score"`
	Responses    int            `json:"responses"`
	Groups       []GroupAverage `json:"groups"`
}

// EconomicDashboard is the added-value statement (DVA).
type EconomicDashboard struct {
	Year         int         `json:"year"`
	Generated    float64     `json:"generated"`
	Distributed  float64     `json:"distributed"`
	Retained     float64     `json:"retained"`
	Distribution []ShareItem `json:"distribution"`
}
