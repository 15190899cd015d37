package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

const testStudentID = "2f1d7e3a-8c4b-4d6a-9f10-3c5b7a9e1d20"

var studentRowColumns = []string{"id", "first_name", "last_name", "email", "major", "enrollment_date", "status", "version", "created_at", "updated_at"}

type observerStub struct {
	labels []string
}

func (o *observerStub) ObserveDBQuery(label string, duration time.Duration) {
	o.labels = append(o.labels, label)
}

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	observer := &observerStub{}
	repo := NewStudentRepository(db, observer)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow(testStudentID, "Ann", "Lee", "ann@x.edu", "CS", now, "Active", 0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + " FROM students ORDER BY created_at DESC, id DESC")).
		WillReturnRows(rows)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ann", students[0].FirstName)
	assert.Equal(t, models.StudentStatusActive, students[0].Status)
	assert.Equal(t, []string{"students.list"}, observer.labels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListEmpty(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectQuery("SELECT .* FROM students").WillReturnRows(sqlmock.NewRows(studentRowColumns))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs(testStudentID).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).AddRow(testStudentID, "Ann", "Lee", "ann@x.edu", "CS", now, "Inactive", 2, now, now))

	student, err := repo.FindByID(context.Background(), testStudentID)
	require.NoError(t, err)
	assert.Equal(t, testStudentID, student.ID)
	assert.Equal(t, 2, student.Version)
	assert.Equal(t, models.StudentStatusInactive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMalformed(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE email = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("ann@x.edu", testStudentID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE email = LOWER($1) LIMIT 1")).
		WithArgs("bo@x.edu").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByEmail(context.Background(), "ann@x.edu", testStudentID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "bo@x.edu", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "Ann", "Lee", "ann@x.edu", "CS", sqlmock.AnyArg(), "Active", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{FirstName: "Ann", LastName: "Lee", Email: "ann@x.edu", Major: "CS"}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.Len(t, student.ID, 36)
	assert.False(t, student.CreatedAt.IsZero())
	assert.Equal(t, student.CreatedAt, student.UpdatedAt)
	assert.Equal(t, student.CreatedAt, student.EnrollmentDate)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintEmailUnique})

	err := repo.Create(context.Background(), &models.Student{FirstName: "Ann", LastName: "Lee", Email: "ann@x.edu", Major: "CS"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUniqueViolation))
	assert.False(t, errors.Is(err, ErrCheckViolation))
	assert.Equal(t, "email", ConstraintField(err))
}

func TestStudentRepositoryUpdateCheckViolation(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectExec("UPDATE students SET").
		WillReturnError(&pq.Error{Code: "23514", Constraint: constraintFirstName})

	err := repo.Update(context.Background(), &models.Student{ID: testStudentID, FirstName: "A"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckViolation))
	assert.Equal(t, "firstName", ConstraintField(err))
}

func TestStudentRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("version = version + 1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	student := &models.Student{ID: testStudentID, FirstName: "Ann", Version: 3}
	require.NoError(t, repo.Update(context.Background(), student))
	assert.Equal(t, 4, student.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{ID: testStudentID})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs(testStudentID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs(testStudentID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), testStudentID))
	assert.ErrorIs(t, repo.Delete(context.Background(), testStudentID), sql.ErrNoRows)
	assert.ErrorIs(t, repo.Delete(context.Background(), "42"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteAll(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectExec("DELETE FROM students$").WillReturnResult(sqlmock.NewResult(0, 10))

	removed, err := repo.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), removed)
}

func TestEnsureStudentSchema(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS students")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE UNIQUE INDEX IF NOT EXISTS uq_students_email")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_students_created_at")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureStudentSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureStudentSchemaFailure(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err := EnsureStudentSchema(context.Background(), db)
	assert.ErrorContains(t, err, "permission denied")
}

func TestRateLimitRepositoryWithoutClient(t *testing.T) {
	repo := NewRateLimitRepository(nil)
	count, err := repo.Increment(context.Background(), "127.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestStudentRepositoryFindByIDInvalidText(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db, nil)

	mock.ExpectQuery("FROM students WHERE id").
		WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.FindByID(context.Background(), testStudentID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
