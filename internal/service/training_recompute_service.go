package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/esg-report-api/internal/models"
	appErrors "github.com/noah-isme/esg-report-api/pkg/errors"
	"github.com/noah-isme/esg-report-api/pkg/jobs"
)

// JobTypeTrainingRecompute identifies the background status refresh.
const JobTypeTrainingRecompute = "training.status.recompute"

const recomputeBatchSize = 200

type trainingRecomputeStore interface {
	ListForRecompute(ctx context.Context, afterID string, limit int) ([]models.EmployeeTrainingDetail, error)
	ListAll(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.TrainingStatus) (bool, error)
	Update(ctx context.Context, training *models.EmployeeTraining) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// RecomputeResult summarises one recompute pass.
type RecomputeResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

// TrainingRecomputeService rewrites stale status snapshots so the stored source stays accurate.
type TrainingRecomputeService struct {
	repo      trainingRecomputeStore
	resolver  *TrainingStatusResolver
	cache     *CacheService
	metrics   *MetricsService
	audit     AuditWriter
	logger    *zap.Logger
	batchSize int
}

// NewTrainingRecomputeService constructs the service.
func NewTrainingRecomputeService(repo trainingRecomputeStore, resolver *TrainingStatusResolver, cache *CacheService, metrics *MetricsService, audit AuditWriter, logger *zap.Logger) *TrainingRecomputeService {
	if resolver == nil {
		resolver = NewTrainingStatusResolver(StatusSourceLive, time.UTC)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingRecomputeService{
		repo:      repo,
		resolver:  resolver,
		cache:     cache,
		metrics:   metrics,
		audit:     audit,
		logger:    logger,
		batchSize: recomputeBatchSize,
	}
}

// RecomputeAll walks every non-cancelled training in id order and rewrites snapshots that drifted.
func (s *TrainingRecomputeService) RecomputeAll(ctx context.Context) (RecomputeResult, error) {
	var result RecomputeResult
	touched := newTouchSet()
	now := s.resolver.Now()
	afterID := ""
	for {
		rows, err := s.repo.ListForRecompute(ctx, afterID, s.batchSize)
		if err != nil {
			return result, appErrors.Internal(err, "failed to scan trainings")
		}
		for _, row := range rows {
			result.Scanned++
			status := CalculateTrainingStatus(now, statusInputForDetail(row))
			if status == row.StoredStatus {
				continue
			}
			changed, err := s.repo.UpdateStatus(ctx, row.ID, status)
			if err != nil {
				return result, appErrors.Internal(err, "failed to update training status")
			}
			if changed {
				result.Updated++
				s.metrics.RecordStatusRecompute(string(status))
				touched.add(row.CompanyID, row.EmployeeID)
			}
		}
		if len(rows) < s.batchSize {
			break
		}
		afterID = rows[len(rows)-1].ID
	}

	s.invalidate(ctx, touched)
	s.record(ctx, result)
	s.logger.Info("training statuses recomputed", zap.Int("scanned", result.Scanned), zap.Int("updated", result.Updated))
	return result, nil
}

// RefreshProgram re-derives expiration dates and snapshots for every training of a program,
// used after the program window or validity changes.
func (s *TrainingRecomputeService) RefreshProgram(ctx context.Context, companyID, programID string) (int, error) {
	rows, err := s.repo.ListAll(ctx, models.EmployeeTrainingFilter{CompanyID: companyID, ProgramID: programID})
	if err != nil {
		return 0, appErrors.Internal(err, "failed to list program trainings")
	}
	touched := newTouchSet()
	updated := 0
	for _, row := range rows {
		training := row.EmployeeTraining
		training.ExpirationDate = TrainingExpirationDate(training.CompletionDate, row.ProgramValidForMonths)
		training.StoredStatus = s.resolver.Snapshot(statusInputForDetail(row))
		if training.StoredStatus == row.StoredStatus && sameDate(training.ExpirationDate, row.ExpirationDate) {
			continue
		}
		if err := s.repo.Update(ctx, &training); err != nil {
			return updated, appErrors.Internal(err, "failed to refresh training")
		}
		updated++
		if training.StoredStatus != row.StoredStatus {
			s.metrics.RecordStatusRecompute(string(training.StoredStatus))
		}
		touched.add(row.CompanyID, row.EmployeeID)
	}
	s.invalidate(ctx, touched)
	return updated, nil
}

// Handle implements the job handler for JobTypeTrainingRecompute.
func (s *TrainingRecomputeService) Handle(ctx context.Context, job jobs.Job) error {
	_, err := s.RecomputeAll(ctx)
	return err
}

// StartTicker enqueues a recompute job every interval until ctx is done. A non-positive
// interval disables the ticker.
func (s *TrainingRecomputeService) StartTicker(ctx context.Context, queue jobDispatcher, interval time.Duration) {
	if interval <= 0 || queue == nil {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: JobTypeTrainingRecompute}); err != nil {
					s.logger.Warn("failed to enqueue training recompute", zap.Error(err))
				}
			}
		}
	}()
}

func (s *TrainingRecomputeService) invalidate(ctx context.Context, touched *touchSet) {
	patterns := make([]string, 0, len(touched.employees)+len(touched.companies))
	for id := range touched.employees {
		patterns = append(patterns, EmployeeScope(id))
	}
	for id := range touched.companies {
		patterns = append(patterns, DashboardScope(id, DashboardTraining))
	}
	if err := s.cache.InvalidateAll(ctx, patterns...); err != nil {
		s.logger.Warn("recompute cache invalidation failed", zap.Error(err))
	}
}

func (s *TrainingRecomputeService) record(ctx context.Context, result RecomputeResult) {
	if s.audit == nil || result.Updated == 0 {
		return
	}
	payload, _ := json.Marshal(result)
	if err := s.audit.Create(ctx, &models.AuditLog{
		Action:    models.AuditActionStatusRecompute,
		Resource:  "employee_trainings",
		NewValues: payload,
	}); err != nil {
		s.logger.Warn("failed to record recompute audit log", zap.Error(err))
	}
}

type touchSet struct {
	companies map[string]struct{}
	employees map[string]struct{}
}

func newTouchSet() *touchSet {
	return &touchSet{companies: map[string]struct{}{}, employees: map[string]struct{}{}}
}

func (t *touchSet) add(companyID, employeeID string) {
	t.companies[companyID] = struct{}{}
	t.employees[employeeID] = struct{}{}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return calendarDay(*a).Equal(calendarDay(*b))
}
