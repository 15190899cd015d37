package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrUniqueViolation marks writes rejected by a unique index.
	ErrUniqueViolation = errors.New("unique constraint violated")
	// ErrCheckViolation marks writes rejected by a CHECK or NOT NULL constraint.
	ErrCheckViolation = errors.New("check constraint violated")
)

// ConstraintError reports which storage constraint rejected a write.
type ConstraintError struct {
	Kind       error
	Constraint string
	Column     string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Is lets errors.Is match against ErrUniqueViolation and ErrCheckViolation.
func (e *ConstraintError) Is(target error) bool { return target == e.Kind }

// classify turns postgres constraint failures into ConstraintError values.
// Unparseable ids are reported as missing rows.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case "unique_violation":
		return &ConstraintError{Kind: ErrUniqueViolation, Constraint: pqErr.Constraint, Column: pqErr.Column, Err: err}
	case "check_violation", "not_null_violation":
		return &ConstraintError{Kind: ErrCheckViolation, Constraint: pqErr.Constraint, Column: pqErr.Column, Err: err}
	case "invalid_text_representation":
		return sql.ErrNoRows
	}
	return err
}

var columnFields = map[string]string{
	"first_name":      "firstName",
	"last_name":       "lastName",
	"email":           "email",
	"major":           "major",
	"enrollment_date": "enrollmentDate",
	"status":          "status",
}

// ConstraintField returns the API field a constraint failure refers to, or "".
func ConstraintField(err error) string {
	var cErr *ConstraintError
	if !errors.As(err, &cErr) {
		return ""
	}
	if field, ok := constraintFields[cErr.Constraint]; ok {
		return field
	}
	return columnFields[cErr.Column]
}
