package dto

import (
	"time"

	"github.com/noah-isme/student-records-api/internal/models"
)

// StudentRecord is the API shape of a student.
type StudentRecord struct {
	ID             string               `json:"id"`
	FirstName      string               `json:"firstName"`
	LastName       string               `json:"lastName"`
	Email          string               `json:"email"`
	Major          string               `json:"major"`
	EnrollmentDate string               `json:"enrollmentDate"`
	Status         models.StudentStatus `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// NewStudentRecord maps a stored student to its API shape, dropping storage-only fields.
func NewStudentRecord(s models.Student) StudentRecord {
	return StudentRecord{
		ID:             s.ID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		Major:          s.Major,
		EnrollmentDate: s.EnrollmentDate.UTC().Format(models.DateLayout),
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Major          string  `json:"major"`
	EnrollmentDate *string `json:"enrollmentDate,omitempty"`
	Status         *string `json:"status,omitempty"`
}

// UpdateStudentRequest holds a partial update; nil fields keep their stored value.
type UpdateStudentRequest struct {
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	Email          *string `json:"email,omitempty"`
	Major          *string `json:"major,omitempty"`
	EnrollmentDate *string `json:"enrollmentDate,omitempty"`
	Status         *string `json:"status,omitempty"`
}
