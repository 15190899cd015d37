package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// studentRules is the full record as it will be stored, checked before every write.
type studentRules struct {
	FirstName      string `json:"firstName" validate:"required,min=2,max=50"`
	LastName       string `json:"lastName" validate:"required,min=2,max=50"`
	Email          string `json:"email" validate:"required,student_email"`
	Major          string `json:"major" validate:"required,min=2,max=100"`
	EnrollmentDate string `json:"enrollmentDate" validate:"omitempty,student_date"`
	Status         string `json:"status" validate:"oneof=Active Inactive"`
}

var fieldLabels = map[string]string{
	"firstName":      "First name",
	"lastName":       "Last name",
	"email":          "Email",
	"major":          "Major",
	"enrollmentDate": "Enrollment date",
	"status":         "Status",
}

func registerStudentRules(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("student_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("student_date", func(fl validator.FieldLevel) bool {
		_, err := parseEnrollmentDate(fl.Field().String())
		return err == nil
	})
}

// parseEnrollmentDate accepts a calendar date or an RFC 3339 timestamp.
func parseEnrollmentDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(models.DateLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeName(s string) string { return strings.TrimSpace(s) }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// validateStudent checks every rule and reports all violations in field order.
func (s *StudentService) validateStudent(rules studentRules) error {
	err := s.validator.Struct(rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	fields := make([]appErrors.FieldViolation, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := violationMessage(fe.Field(), fe.Tag(), fe.Param())
		fields = append(fields, appErrors.FieldViolation{Field: fe.Field(), Message: msg})
		messages = append(messages, msg)
	}
	return appErrors.WithFields(appErrors.ErrValidation, strings.Join(messages, ". "), fields)
}

func violationMessage(field, tag, param string) string {
	label := fieldLabels[field]
	if label == "" {
		label = field
	}
	switch tag {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, param)
	case "student_email":
		return "Please enter a valid email address"
	case "student_date":
		return "Enrollment date must be a valid date"
	case "oneof":
		return "Status must be either Active or Inactive"
	}
	return label + " is invalid"
}
