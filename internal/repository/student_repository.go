package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

const studentColumns = "id, first_name, last_name, email, major, enrollment_date, status, version, created_at, updated_at"

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db      *sqlx.DB
	metrics queryObserver
}

// NewStudentRepository constructs a StudentRepository. metrics may be nil.
func NewStudentRepository(db *sqlx.DB, metrics queryObserver) *StudentRepository {
	return &StudentRepository{db: db, metrics: metrics}
}

func (r *StudentRepository) observe(label string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

// List returns every student, newest first.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	defer r.observe("students.list", time.Now())

	query := "SELECT " + studentColumns + " FROM students ORDER BY created_at DESC, id DESC"
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID. Malformed IDs report sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	defer r.observe("students.find_by_id", time.Now())

	query := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, classify(err)
	}
	return &student, nil
}

// ExistsByEmail checks if a student with given email exists optionally excluding an ID.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	defer r.observe("students.exists_by_email", time.Now())

	query := "SELECT 1 FROM students WHERE email = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" && validID(excludeID) {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	defer r.observe("students.create", time.Now())

	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.UpdatedAt.IsZero() {
		student.UpdatedAt = student.CreatedAt
	}
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = student.CreatedAt
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	const query = `INSERT INTO students (id, first_name, last_name, email, major, enrollment_date, status, version, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :major, :enrollment_date, :status, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", classify(err))
	}
	return nil
}

// Update replaces the mutable fields of an existing student and bumps its version.
// It reports sql.ErrNoRows when the record no longer exists.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	if !validID(student.ID) {
		return sql.ErrNoRows
	}
	defer r.observe("students.update", time.Now())

	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, major = :major,
        enrollment_date = :enrollment_date, status = :status, version = version + 1, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", classify(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	student.Version++
	return nil
}

// Delete removes a student permanently. It reports sql.ErrNoRows when nothing was deleted.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}
	defer r.observe("students.delete", time.Now())

	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", classify(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAll truncates the collection and returns how many rows were removed.
func (r *StudentRepository) DeleteAll(ctx context.Context) (int64, error) {
	defer r.observe("students.delete_all", time.Now())

	result, err := r.db.ExecContext(ctx, "DELETE FROM students")
	if err != nil {
		return 0, fmt.Errorf("delete students: %w", err)
	}
	return result.RowsAffected()
}

// Ping verifies the database connection.
func (r *StudentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// validID accepts only the canonical 36 character UUID form.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
