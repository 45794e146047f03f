package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "students_admission_number_key"})

	assert.True(t, IsDuplicateConstraintError(dup, "students_admission_number_key"))
	assert.True(t, IsDuplicateConstraintError(dup, ""))
	assert.False(t, IsDuplicateConstraintError(dup, "programs_name_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), ""))
}

func TestOtherViolations(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "payments_amount_positive"}

	assert.True(t, IsForeignKeyError(fk))
	assert.False(t, IsForeignKeyError(check))
	assert.True(t, IsCheckViolation(check, "payments_amount_positive"))
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
}
