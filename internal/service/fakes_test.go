package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/esg-report-api/internal/models"
	"github.com/noah-isme/esg-report-api/pkg/jobs"
)

type fakeEmployeeRepo struct {
	items map[string]*models.Employee
}

func newFakeEmployeeRepo(items ...models.Employee) *fakeEmployeeRepo {
	repo := &fakeEmployeeRepo{items: map[string]*models.Employee{}}
	for i := range items {
		e := items[i]
		repo.items[e.ID] = &e
	}
	return repo
}

func (r *fakeEmployeeRepo) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	out := []models.Employee{}
	for _, e := range r.items {
		if e.CompanyID == filter.CompanyID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, len(out), nil
}

func (r *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (r *fakeEmployeeRepo) ExistsByEmail(ctx context.Context, companyID, email, excludeID string) (bool, error) {
	for _, e := range r.items {
		if e.CompanyID == companyID && strings.EqualFold(e.Email, email) && e.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEmployeeRepo) CountActive(ctx context.Context, companyID string) (int, error) {
	n := 0
	for _, e := range r.items {
		if e.CompanyID == companyID && e.Active {
			n++
		}
	}
	return n, nil
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	clone := *employee
	r.items[employee.ID] = &clone
	return nil
}

func (r *fakeEmployeeRepo) Update(ctx context.Context, employee *models.Employee) error {
	clone := *employee
	r.items[employee.ID] = &clone
	return nil
}

func (r *fakeEmployeeRepo) Deactivate(ctx context.Context, id string) error {
	r.items[id].Active = false
	return nil
}

type fakeProgramRepo struct {
	items map[string]*models.TrainingProgram
}

func newFakeProgramRepo(items ...models.TrainingProgram) *fakeProgramRepo {
	repo := &fakeProgramRepo{items: map[string]*models.TrainingProgram{}}
	for i := range items {
		p := items[i]
		repo.items[p.ID] = &p
	}
	return repo
}

func (r *fakeProgramRepo) List(ctx context.Context, filter models.TrainingProgramFilter) ([]models.TrainingProgram, int, error) {
	out := []models.TrainingProgram{}
	for _, p := range r.items {
		if p.CompanyID == filter.CompanyID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *fakeProgramRepo) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProgramRepo) Create(ctx context.Context, program *models.TrainingProgram) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	clone := *program
	r.items[program.ID] = &clone
	return nil
}

func (r *fakeProgramRepo) Update(ctx context.Context, program *models.TrainingProgram) error {
	clone := *program
	r.items[program.ID] = &clone
	return nil
}

func (r *fakeProgramRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

// fakeTrainingRepo joins stored trainings with the employee and program fakes the way the SQL
// repository does.
type fakeTrainingRepo struct {
	items         map[string]*models.EmployeeTraining
	employees     *fakeEmployeeRepo
	programs      *fakeProgramRepo
	listAllCalls  int
	statusUpdates int
}

func newFakeTrainingRepo(employees *fakeEmployeeRepo, programs *fakeProgramRepo) *fakeTrainingRepo {
	return &fakeTrainingRepo{items: map[string]*models.EmployeeTraining{}, employees: employees, programs: programs}
}

func (r *fakeTrainingRepo) put(t models.EmployeeTraining) {
	r.items[t.ID] = &t
}

func (r *fakeTrainingRepo) detail(t *models.EmployeeTraining) models.EmployeeTrainingDetail {
	d := models.EmployeeTrainingDetail{EmployeeTraining: *t}
	if e, ok := r.employees.items[t.EmployeeID]; ok {
		d.EmployeeName = e.FullName
		d.Department = e.Department
	}
	if p, ok := r.programs.items[t.ProgramID]; ok {
		d.ProgramName = p.Name
		d.ProgramStartDate = p.StartDate
		d.ProgramEndDate = p.EndDate
		d.EfficacyEvaluationDeadline = p.EfficacyEvaluationDeadline
		d.ProgramValidForMonths = p.ValidForMonths
		d.ProgramDurationHours = p.DurationHours
		d.ProgramMandatory = p.IsMandatory
	}
	return d
}

func (r *fakeTrainingRepo) Create(ctx context.Context, training *models.EmployeeTraining) error {
	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	r.put(*training)
	return nil
}

func (r *fakeTrainingRepo) FindByID(ctx context.Context, id string) (*models.EmployeeTrainingDetail, error) {
	t, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := r.detail(t)
	return &d, nil
}

func (r *fakeTrainingRepo) Exists(ctx context.Context, employeeID, programID string) (bool, error) {
	for _, t := range r.items {
		if t.EmployeeID == employeeID && t.ProgramID == programID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTrainingRepo) matching(filter models.EmployeeTrainingFilter) []models.EmployeeTrainingDetail {
	out := []models.EmployeeTrainingDetail{}
	for _, t := range r.items {
		if filter.CompanyID != "" && t.CompanyID != filter.CompanyID {
			continue
		}
		if filter.EmployeeID != "" && t.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.ProgramID != "" && t.ProgramID != filter.ProgramID {
			continue
		}
		out = append(out, r.detail(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeTrainingRepo) List(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, int, error) {
	rows := r.matching(filter)
	return rows, len(rows), nil
}

func (r *fakeTrainingRepo) ListAll(ctx context.Context, filter models.EmployeeTrainingFilter) ([]models.EmployeeTrainingDetail, error) {
	r.listAllCalls++
	return r.matching(filter), nil
}

func (r *fakeTrainingRepo) ListByYear(ctx context.Context, companyID string, year int) ([]models.EmployeeTrainingDetail, error) {
	out := []models.EmployeeTrainingDetail{}
	for _, d := range r.matching(models.EmployeeTrainingFilter{CompanyID: companyID}) {
		if d.ProgramStartDate.Year() == year {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeTrainingRepo) ListForRecompute(ctx context.Context, afterID string, limit int) ([]models.EmployeeTrainingDetail, error) {
	out := []models.EmployeeTrainingDetail{}
	for _, d := range r.matching(models.EmployeeTrainingFilter{}) {
		if d.IsCancelled || d.ID <= afterID {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeTrainingRepo) EmployeeIDsByProgram(ctx context.Context, programID string) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range r.items {
		if t.ProgramID == programID && !seen[t.EmployeeID] {
			seen[t.EmployeeID] = true
			out = append(out, t.EmployeeID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeTrainingRepo) Update(ctx context.Context, training *models.EmployeeTraining) error {
	r.put(*training)
	return nil
}

func (r *fakeTrainingRepo) UpdateStatus(ctx context.Context, id string, status models.TrainingStatus) (bool, error) {
	t, ok := r.items[id]
	if !ok || t.StoredStatus == status {
		return false, nil
	}
	t.StoredStatus = status
	r.statusUpdates++
	return true, nil
}

func (r *fakeTrainingRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type fakeQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *fakeQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func fixedResolver(source string, now time.Time) *TrainingStatusResolver {
	r := NewTrainingStatusResolver(source, time.UTC)
	r.now = func() time.Time { return now }
	return r
}

func activeEmployee(id, companyID string) models.Employee {
	return models.Employee{ID: id, CompanyID: companyID, FullName: "Employee " + id, Email: id + "@acme.com", Department: "Operations", Active: true}
}
