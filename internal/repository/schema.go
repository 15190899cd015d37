package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Constraint names are stable so storage rejections can be mapped back to fields.
const (
	constraintEmailUnique = "uq_students_email"
	constraintFirstName   = "chk_students_first_name"
	constraintLastName    = "chk_students_last_name"
	constraintEmailFormat = "chk_students_email"
	constraintMajor       = "chk_students_major"
	constraintStatus      = "chk_students_status"
)

var constraintFields = map[string]string{
	constraintEmailUnique: "email",
	constraintFirstName:   "firstName",
	constraintLastName:    "lastName",
	constraintEmailFormat: "email",
	constraintMajor:       "major",
	constraintStatus:      "status",
}

var studentSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
        id UUID PRIMARY KEY,
        first_name TEXT NOT NULL,
        last_name TEXT NOT NULL,
        email TEXT NOT NULL,
        major TEXT NOT NULL,
        enrollment_date DATE NOT NULL DEFAULT CURRENT_DATE,
        status TEXT NOT NULL DEFAULT 'Active',
        version INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CONSTRAINT ` + constraintFirstName + ` CHECK (first_name = btrim(first_name) AND char_length(first_name) BETWEEN 2 AND 50),
        CONSTRAINT ` + constraintLastName + ` CHECK (last_name = btrim(last_name) AND char_length(last_name) BETWEEN 2 AND 50),
        CONSTRAINT ` + constraintEmailFormat + ` CHECK (email = lower(btrim(email)) AND email ~ '^\S+@\S+\.\S+$'),
        CONSTRAINT ` + constraintMajor + ` CHECK (major = btrim(major) AND char_length(major) BETWEEN 2 AND 100),
        CONSTRAINT ` + constraintStatus + ` CHECK (status IN ('Active', 'Inactive'))
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + constraintEmailUnique + ` ON students (email)`,
	`CREATE INDEX IF NOT EXISTS idx_students_created_at ON students (created_at DESC)`,
}

// EnsureStudentSchema creates the students table and its constraints when missing.
func EnsureStudentSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range studentSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure student schema: %w", err)
		}
	}
	return nil
}
