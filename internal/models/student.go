package models

import "time"

// StudentStatus is the enrolment state of a student.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "Active"
	StudentStatusInactive StudentStatus = "Inactive"
)

// Valid reports whether s is one of the known statuses.
func (s StudentStatus) Valid() bool {
	return s == StudentStatusActive || s == StudentStatusInactive
}

// Student is the stored shape of a student record.
type Student struct {
	ID             string        `db:"id"`
	FirstName      string        `db:"first_name"`
	LastName       string        `db:"last_name"`
	Email          string        `db:"email"`
	Major          string        `db:"major"`
	EnrollmentDate time.Time     `db:"enrollment_date"`
	Status         StudentStatus `db:"status"`
	Version        int           `db:"version"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// DateLayout is the calendar date format used for enrollment dates.
const DateLayout = "2006-01-02"
