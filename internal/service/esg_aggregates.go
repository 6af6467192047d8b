package service

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/esg-report-api/internal/dto"
	"github.com/noah-isme/esg-report-api/internal/models"
)

// Sum adds every value.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Average returns the arithmetic mean, or 0 for an empty input.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// Percentage returns part/total*100 rounded to two decimals, or 0 when total is 0.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return round2(part / total * 100)
}

// Ratio divides safely.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// ShareOfTotal turns labelled amounts into items sorted by value desc then label.
func ShareOfTotal(values map[string]float64) []dto.ShareItem {
	var total float64
	for _, v := range values {
		total += v
	}
	items := make([]dto.ShareItem, 0, len(values))
	for label, v := range values {
		items = append(items, dto.ShareItem{Label: label, Value: round2(v), Percentage: Percentage(v, total)})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Value == items[j].Value {
			return items[i].Label < items[j].Label
		}
		return items[i].Value > items[j].Value
	})
	return items
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AggregateTraining reduces resolved training records. expiringWithin bounds the "expiring soon"
// window counted from now; already expired records are counted separately.
func AggregateTraining(year int, records []models.EmployeeTrainingDetail, headcount int, now time.Time, expiringWithin time.Duration) dto.TrainingDashboard {
	out := dto.TrainingDashboard{
		Year:         year,
		TotalRecords: len(records),
		StatusCounts: make(map[models.TrainingStatus]int, len(models.TrainingStatuses)),
	}
	for _, status := range models.TrainingStatuses {
		out.StatusCounts[status] = 0
	}

	var scores []float64
	var mandatory, mandatoryDone int
	today := calendarDay(now)
	horizon := calendarDay(now.Add(expiringWithin))
	for _, r := range records {
		out.StatusCounts[r.Status]++
		if r.Status == models.TrainingStatusCompleted {
			out.TotalHours += r.ProgramDurationHours
		}
		if r.Score != nil {
			scores = append(scores, *r.Score)
		}
		if r.ProgramMandatory && r.Status != models.TrainingStatusCancelled {
			mandatory++
			if r.Status == models.TrainingStatusCompleted {
				mandatoryDone++
			}
		}
		if r.ExpirationDate != nil && r.Status != models.TrainingStatusCancelled {
			exp := calendarDay(*r.ExpirationDate)
			switch {
			case exp.Before(today):
				out.Expired++
			case !exp.After(horizon):
				out.ExpiringSoon++
			}
		}
	}
	out.TotalHours = round2(out.TotalHours)
	out.HoursPerEmployee = round2(Ratio(out.TotalHours, float64(headcount)))
	out.AverageScore = round2(Average(scores))
	out.MandatoryCompletionPct = Percentage(float64(mandatoryDone), float64(mandatory))
	return out
}

// AggregateBenefits reduces benefit rows active during year.
func AggregateBenefits(year int, benefits []models.Benefit, headcount int) dto.BenefitsDashboard {
	out := dto.BenefitsDashboard{Year: year}
	byType := make(map[string]float64)
	beneficiaries := make(map[string]struct{})
	for _, b := range benefits {
		if !b.ActiveDuring(year) {
			continue
		}
		out.TotalMonthlyCost += b.MonthlyCost
		byType[b.BenefitType] += b.MonthlyCost
		beneficiaries[b.EmployeeID] = struct{}{}
	}
	out.TotalMonthlyCost = round2(out.TotalMonthlyCost)
	out.ByType = ShareOfTotal(byType)
	out.Beneficiaries = len(beneficiaries)
	out.AverageCostPerBeneficiary = round2(Ratio(out.TotalMonthlyCost, float64(out.Beneficiaries)))
	out.CoveragePct = Percentage(float64(out.Beneficiaries), float64(headcount))
	return out
}

// AggregateEnvironmental reduces emission and resource rows.
func AggregateEnvironmental(year int, emissions []models.EmissionRecord, resources []models.ResourceRecord, headcount int) dto.EnvironmentalDashboard {
	out := dto.EnvironmentalDashboard{Year: year, Headcount: headcount}
	scopes := map[string]float64{"scope_1": 0, "scope_2": 0, "scope_3": 0}
	for _, e := range emissions {
		out.TotalTCO2e += e.TCO2e
		scopes[scopeLabel(e.Scope)] += e.TCO2e
	}
	for _, r := range resources {
		out.WaterM3 += r.WaterM3
		out.WasteTonnes += r.WasteTonnes
		out.RecycledTonnes += r.RecycledTonnes
		out.EnergyMWh += r.EnergyMWh
	}
	out.TotalTCO2e = round2(out.TotalTCO2e)
	out.Scopes = ShareOfTotal(scopes)
	out.WaterM3 = round2(out.WaterM3)
	out.WasteTonnes = round2(out.WasteTonnes)
	out.RecycledTonnes = round2(out.RecycledTonnes)
	out.EnergyMWh = round2(out.EnergyMWh)
	out.WaterPerEmployee = round2(Ratio(out.WaterM3, float64(headcount)))
	out.WastePerEmployee = round2(Ratio(out.WasteTonnes, float64(headcount)))
	out.RecyclingPct = Percentage(out.RecycledTonnes, out.WasteTonnes)
	return out
}

func scopeLabel(scope int) string {
	switch scope {
	case 1:
		return "scope_1"
	case 2:
		return "scope_2"
	default:
		return "scope_3"
	}
}

// AggregateStakeholders averages engagement scores overall and per group.
func AggregateStakeholders(year int, rows []models.StakeholderEngagement) dto.StakeholderDashboard {
	out := dto.StakeholderDashboard{Year: year, Responses: len(rows)}
	all := make([]float64, 0, len(rows))
	byGroup := make(map[string][]float64)
	for _, r := range rows {
		all = append(all, r.Score)
		byGroup[r.Group] = append(byGroup[r.Group], r.Score)
	}
	out.AverageScore = round2(Average(all))
	out.Groups = make([]dto.GroupAverage, 0, len(byGroup))
	for group, scores := range byGroup {
		out.Groups = append(out.Groups, dto.GroupAverage{Group: group, Average: round2(Average(scores)), Count: len(scores)})
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].Group < out.Groups[j].Group })
	return out
}

// AggregateEconomic builds the DVA: distribution percentages are relative to generated value.
func AggregateEconomic(year int, items []models.EconomicValueItem) dto.EconomicDashboard {
	out := dto.EconomicDashboard{Year: year}
	distributed := make(map[string]float64)
	for _, item := range items {
		switch item.Kind {
		case models.EconomicValueGenerated:
			out.Generated += item.Amount
		case models.EconomicValueDistributed:
			out.Distributed += item.Amount
			distributed[item.Group] += item.Amount
		}
	}
	out.Generated = round2(out.Generated)
	out.Distributed = round2(out.Distributed)
	out.Retained = round2(out.Generated - out.Distributed)
	out.Distribution = make([]dto.ShareItem, 0, len(distributed))
	for group, amount := range distributed {
		out.Distribution = append(out.Distribution, dto.ShareItem{
			Label:      group,
			Value:      round2(amount),
			Percentage: Percentage(amount, out.Generated),
		})
	}
	sort.Slice(out.Distribution, func(i, j int) bool {
		if out.Distribution[i].Value == out.Distribution[j].Value {
			return out.Distribution[i].Label < out.Distribution[j].Label
		}
		return out.Distribution[i].Value > out.Distribution[j].Value
	})
	return out
}
