package service

import (
	"time"

	"github.com/noah-isme/esg-report-api/internal/models"
)

// TrainingStatusInput carries the program window and per-record flags used to classify a training.
type TrainingStatusInput struct {
	StartDate                  time.Time
	EndDate                    time.Time
	EfficacyEvaluationDeadline *time.Time
	HasEfficacyEvaluation      bool
	IsCancelled                bool
}

// CalculateTrainingStatus classifies a training at calendar-day granularity. now is read in its
// own location; program dates are date-only values and compared by their calendar day.
// All boundaries are inclusive and cancellation wins over any dates.
func CalculateTrainingStatus(now time.Time, in TrainingStatusInput) models.TrainingStatus {
	if in.IsCancelled {
		return models.TrainingStatusCancelled
	}

	today := calendarDay(now)
	start := calendarDay(in.StartDate)
	end := calendarDay(in.EndDate)

	switch {
	case today.Before(start):
		return models.TrainingStatusPlanned
	case !today.After(end):
		return models.TrainingStatusInProgress
	}

	if in.EfficacyEvaluationDeadline != nil && !in.HasEfficacyEvaluation {
		deadline := calendarDay(*in.EfficacyEvaluationDeadline)
		if !today.After(deadline) {
			return models.TrainingStatusAwaitingEvaluation
		}
	}
	return models.TrainingStatusCompleted
}

// StatusInputFor builds the calculator input from a training row and its program.
func StatusInputFor(program models.TrainingProgram, training models.EmployeeTraining) TrainingStatusInput {
	return TrainingStatusInput{
		StartDate:                  program.StartDate,
		EndDate:                    program.EndDate,
		EfficacyEvaluationDeadline: program.EfficacyEvaluationDeadline,
		HasEfficacyEvaluation:      training.HasEfficacyEvaluation,
		IsCancelled:                training.IsCancelled,
	}
}

// statusInputForDetail reads the program window joined onto a detail row.
func statusInputForDetail(d models.EmployeeTrainingDetail) TrainingStatusInput {
	return TrainingStatusInput{
		StartDate:                  d.ProgramStartDate,
		EndDate:                    d.ProgramEndDate,
		EfficacyEvaluationDeadline: d.EfficacyEvaluationDeadline,
		HasEfficacyEvaluation:      d.HasEfficacyEvaluation,
		IsCancelled:                d.IsCancelled,
	}
}

// TrainingExpirationDate returns completion + validForMonths calendar months as a date, or nil
// when either input is missing.
func TrainingExpirationDate(completion *time.Time, validForMonths *int) *time.Time {
	if completion == nil || validForMonths == nil {
		return nil
	}
	exp := AddCalendarMonths(*completion, *validForMonths)
	return &exp
}

// AddCalendarMonths advances t by n months and drops the time component. A day that does not
// exist in the target month is clamped to that month's last day (Jan 31 + 1 month = Feb 28/29).
func AddCalendarMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := daysIn(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
