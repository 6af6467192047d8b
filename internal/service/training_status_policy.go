package service

import (
	"time"

	"github.com/noah-isme/esg-report-api/internal/models"
)

// Training status sources.
const (
	StatusSourceLive   = "live"
	StatusSourceStored = "stored"
)

// TrainingStatusResolver decides which status a training row reports. With the live source the
// status is recomputed from the program window on every read; with the stored source the
// snapshot written at save time is trusted.
type TrainingStatusResolver struct {
	source string
	loc    *time.Location
	now    func() time.Time
}

// NewTrainingStatusResolver builds a resolver; unknown sources fall back to live.
func NewTrainingStatusResolver(source string, loc *time.Location) *TrainingStatusResolver {
	if source != StatusSourceStored {
		source = StatusSourceLive
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TrainingStatusResolver{source: source, loc: loc, now: time.Now}
}

// Source reports the configured source.
func (r *TrainingStatusResolver) Source() string {
	return r.source
}

// Now returns the current instant in the training location.
func (r *TrainingStatusResolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Snapshot computes the status to persist for a write.
func (r *TrainingStatusResolver) Snapshot(in TrainingStatusInput) models.TrainingStatus {
	return CalculateTrainingStatus(r.Now(), in)
}

// Resolve fills detail.Status according to the configured source.
func (r *TrainingStatusResolver) Resolve(detail *models.EmployeeTrainingDetail) {
	if r.source == StatusSourceStored && detail.StoredStatus.Valid() {
		detail.Status = detail.StoredStatus
		return
	}
	detail.Status = CalculateTrainingStatus(r.Now(), statusInputForDetail(*detail))
}

// ResolveAll resolves every row in place.
func (r *TrainingStatusResolver) ResolveAll(details []models.EmployeeTrainingDetail) {
	for i := range details {
		r.Resolve(&details[i])
	}
}
