// Package seed creates the reference data a fresh database needs.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
)

// ProgramCreator is the part of the program repository seeding needs
type ProgramCreator interface {
	Create(ctx context.Context, program *appModels.Program) error
}

// UserCreator is the part of the user repository seeding needs
type UserCreator interface {
	Create(ctx context.Context, user *appModels.User) error
}

// Admin describes the bootstrap administrator. No account is created without a password.
type Admin struct {
	Email    string
	Password string
}

// DefaultPrograms are the programs and yearly costs a new installation starts with
var DefaultPrograms = []appModels.Program{
	{Name: "Plumbing Level 4", Department: "Building", CostPerYear: 50000},
	{Name: "Plumbing Level 5", Department: "Building", CostPerYear: 56000},
	{Name: "Masonry Level 4", Department: "Building", CostPerYear: 48000},
	{Name: "Building Technology Level 6", Department: "Building", CostPerYear: 67189},
	{Name: "Electrical Installation Level 5", Department: "Electrical", CostPerYear: 58500},
	{Name: "Electrical and Electronics Engineering Level 6", Department: "Electrical", CostPerYear: 67189},
	{Name: "ICT Technician Level 5", Department: "ICT", CostPerYear: 55000},
	{Name: "ICT Technician Level 6", Department: "ICT", CostPerYear: 62000},
	{Name: "Automotive Engineering Level 6", Department: "Mechanical", CostPerYear: 67189},
	{Name: "Welding and Fabrication Level 4", Department: "Mechanical", CostPerYear: 47000},
	{Name: "Accountancy Level 6", Department: "Business", CostPerYear: 52000},
	{Name: "Hospitality Management Level 6", Department: "Hospitality", CostPerYear: 60000},
}

// CreateDefaultData creates the default programs and the admin account when they do not exist.
// Existing rows are left untouched; other failures are collected and returned together.
func CreateDefaultData(ctx context.Context, programs ProgramCreator, users UserCreator, admin Admin, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Programs/Admin)...")
	var finalErr error

	created := 0
	for _, p := range DefaultPrograms {
		program := p
		err := programs.Create(ctx, &program)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrProgramAlreadyExists):
		default:
			lgr.Error().Err(err).Str("program", p.Name).Msg("Error creating program")
			finalErr = errors.Join(finalErr, err)
		}
	}
	lgr.Info().Int("created", created).Int("total", len(DefaultPrograms)).Msg("Default programs checked")

	if err := createAdmin(ctx, users, admin, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, users UserCreator, admin Admin, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		lgr.Warn().Msg("Admin seed credentials not set, skipping admin creation")
		return nil
	}

	hash, err := pkgAuth.HashPassword(admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	user := &appModels.User{
		Email:    email,
		Password: hash,
		FullName: "System Administrator",
		UserType: appModels.UserTypeAdmin,
		Role:     appModels.RoleAdmin,
		IsActive: true,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			lgr.Info().Msg("Admin user already exists, skipping creation")
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}
	lgr.Info().Int64("adminID", user.ID).Msg("Default admin user created successfully")
	return nil
}
