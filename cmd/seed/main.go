package main

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/dto"
	"github.com/noah-isme/student-records-api/internal/repository"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/pkg/config"
	"github.com/noah-isme/student-records-api/pkg/database"
	"github.com/noah-isme/student-records-api/pkg/logger"
)

type sample struct {
	first, last, major, enrolled, status string
}

var samples = []sample{
	{"Emily", "Johnson", "Computer Science", "2024-01-15", "Active"},
	{"Michael", "Chen", "Electrical Engineering", "2024-02-01", "Active"},
	{"Sarah", "Williams", "Business Administration", "2024-01-20", "Active"},
	{"James", "Brown", "Mechanical Engineering", "2023-09-10", "Active"},
	{"Olivia", "Davis", "Psychology", "2024-03-05", "Inactive"},
	{"William", "Garcia", "Medicine", "2023-08-15", "Active"},
	{"Sophia", "Martinez", "Law", "2024-01-10", "Active"},
	{"Daniel", "Anderson", "Mathematics", "2023-09-01", "Active"},
	{"Ava", "Taylor", "Graphic Design", "2024-02-15", "Active"},
	{"Noah", "Thomas", "Physics", "2023-08-20", "Inactive"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := repository.EnsureStudentSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	students := service.NewStudentService(repository.NewStudentRepository(db, nil), validator.New(), logr)
	if _, err := students.Reset(ctx); err != nil {
		logr.Fatal("failed to clear students", zap.Error(err))
	}

	for _, s := range samples {
		req := dto.CreateStudentRequest{
			FirstName:      s.first,
			LastName:       s.last,
			Email:          s.first + "." + s.last + "@university.edu",
			Major:          s.major,
			EnrollmentDate: &s.enrolled,
			Status:         &s.status,
		}
		if _, err := students.Create(ctx, req); err != nil {
			logr.Fatal("failed to seed student", zap.String("email", req.Email), zap.Error(err))
		}
	}
	logr.Info("seed complete", zap.Int("students", len(samples)))
}
