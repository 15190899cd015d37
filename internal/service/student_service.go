package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/repository"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type operationRecorder interface {
	RecordStudentOperation(operation, outcome string)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   operationRecorder
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerStudentRules(validate)
	return &StudentService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// WithMetrics attaches an operation recorder and returns the service.
func (s *StudentService) WithMetrics(metrics operationRecorder) *StudentService {
	s.metrics = metrics
	return s
}

// List returns every student, newest first.
func (s *StudentService) List(ctx context.Context) (records []dto.StudentRecord, err error) {
	defer s.record("list", &err)

	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storeError("list", err)
	}
	records = make([]dto.StudentRecord, 0, len(students))
	for _, student := range students {
		records = append(records, dto.NewStudentRecord(student))
	}
	return records, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (record *dto.StudentRecord, err error) {
	defer s.record("get", &err)

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("get", err)
	}
	out := dto.NewStudentRecord(*student)
	return &out, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (record *dto.StudentRecord, err error) {
	defer s.record("create", &err)

	rules := studentRules{
		FirstName: normalizeName(req.FirstName),
		LastName:  normalizeName(req.LastName),
		Email:     normalizeEmail(req.Email),
		Major:     normalizeName(req.Major),
		Status:    string(models.StudentStatusActive),
	}
	if req.Status != nil {
		rules.Status = normalizeName(*req.Status)
	}
	if req.EnrollmentDate != nil {
		rules.EnrollmentDate = normalizeName(*req.EnrollmentDate)
	}
	if err := s.validateStudent(rules); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, rules.Email, "")
	if err != nil {
		return nil, s.storeError("create", err)
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	now := s.clock()
	student := &models.Student{
		FirstName:      rules.FirstName,
		LastName:       rules.LastName,
		Email:          rules.Email,
		Major:          rules.Major,
		EnrollmentDate: calendarDate(now),
		Status:         models.StudentStatus(rules.Status),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if rules.EnrollmentDate != "" {
		date, _ := parseEnrollmentDate(rules.EnrollmentDate)
		student.EnrollmentDate = calendarDate(date)
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, s.storeError("create", err)
	}

	s.logger.Info("student created", zap.String("student_id", student.ID))
	out := dto.NewStudentRecord(*student)
	return &out, nil
}

// Update applies a partial change and re-validates the resulting record.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (record *dto.StudentRecord, err error) {
	defer s.record("update", &err)

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("update", err)
	}

	if req.Email != nil {
		if email := normalizeEmail(*req.Email); email != "" {
			exists, err := s.repo.ExistsByEmail(ctx, email, student.ID)
			if err != nil {
				return nil, s.storeError("update", err)
			}
			if exists {
				return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
			}
		}
	}

	rules := studentRules{
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Email:     student.Email,
		Major:     student.Major,
		Status:    string(student.Status),
	}
	if req.FirstName != nil {
		rules.FirstName = normalizeName(*req.FirstName)
	}
	if req.LastName != nil {
		rules.LastName = normalizeName(*req.LastName)
	}
	if req.Email != nil {
		rules.Email = normalizeEmail(*req.Email)
	}
	if req.Major != nil {
		rules.Major = normalizeName(*req.Major)
	}
	if req.Status != nil {
		rules.Status = normalizeName(*req.Status)
	}
	if req.EnrollmentDate != nil {
		rules.EnrollmentDate = normalizeName(*req.EnrollmentDate)
	}
	if err := s.validateStudent(rules); err != nil {
		return nil, err
	}

	updated := *student
	updated.FirstName = rules.FirstName
	updated.LastName = rules.LastName
	updated.Email = rules.Email
	updated.Major = rules.Major
	updated.Status = models.StudentStatus(rules.Status)
	if rules.EnrollmentDate != "" {
		date, _ := parseEnrollmentDate(rules.EnrollmentDate)
		updated.EnrollmentDate = calendarDate(date)
	}
	updated.UpdatedAt = s.clock()
	if !updated.UpdatedAt.After(student.UpdatedAt) {
		updated.UpdatedAt = student.UpdatedAt.Add(time.Microsecond)
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, s.storeError("update", err)
	}

	s.logger.Info("student updated", zap.String("student_id", updated.ID), zap.Int("version", updated.Version))
	out := dto.NewStudentRecord(updated)
	return &out, nil
}

// Delete removes a student permanently.
func (s *StudentService) Delete(ctx context.Context, id string) (err error) {
	defer s.record("delete", &err)

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError("delete", err)
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

// Reset removes every student and reports how many were removed.
func (s *StudentService) Reset(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, s.storeError("reset", err)
	}
	s.logger.Info("students cleared", zap.Int64("removed", removed))
	return removed, nil
}

// storeError translates repository failures into typed errors.
func (s *StudentService) storeError(operation string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	case errors.Is(err, repository.ErrUniqueViolation):
		dup := appErrors.Clone(appErrors.ErrDuplicateEmail, "")
		dup.Err = err
		return dup
	case errors.Is(err, repository.ErrCheckViolation):
		field := repository.ConstraintField(err)
		if field == "" {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
		}
		msg := violationMessage(field, "", "")
		verr := appErrors.WithFields(appErrors.ErrValidation, msg, []appErrors.FieldViolation{{Field: field, Message: msg}})
		verr.Err = err
		return verr
	}
	s.logger.Error("student storage failure", zap.String("operation", operation), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}

func (s *StudentService) record(operation string, errp *error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if *errp != nil {
		outcome = appErrors.FromError(*errp).Code
	}
	s.metrics.RecordStudentOperation(operation, outcome)
}

// clock returns the current time at storage precision.
func (s *StudentService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func calendarDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
