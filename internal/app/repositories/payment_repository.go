package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/db"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/dberrors"
)

// PaymentRepository stores fee payments. Payments are immutable: there is no update or delete.
type PaymentRepository struct {
	db     db.Querier
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(q db.Querier, log zerolog.Logger) *PaymentRepository {
	return &PaymentRepository{db: q, logger: log.With().Str("repository", "payments").Logger()}
}

// Create inserts a payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	sql, args, err := psql.Insert("payments").
		Columns("admission_number", "amount", "mode", "reference", "payment_date", "recorded_by").
		Values(payment.AdmissionNumber, payment.Amount, payment.Mode, payment.Reference, payment.PaymentDate, payment.RecordedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create payment query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&payment.ID, &payment.CreatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "payments_mode_reference_key"):
			return apperrors.NewConflictError(fmt.Sprintf("a %s payment with this %s already exists",
				payment.Mode, payment.Mode.ReferenceLabel()))
		case dberrors.IsCheckViolation(err, "payments_amount_positive"):
			return apperrors.NewValidationError("amount", "amount must be greater than zero")
		}
		r.logger.Error().Err(err).Str("admissionNumber", payment.AdmissionNumber).Msg("Error creating payment")
		return fmt.Errorf("error creating payment: %w", err)
	}
	return nil
}

// ListByAdmissionNumber returns a student's payments, newest first
func (r *PaymentRepository) ListByAdmissionNumber(ctx context.Context, admissionNumber string) ([]models.Payment, error) {
	sql, args, err := psql.Select("id", "admission_number", "amount", "mode", "reference", "payment_date", "recorded_by", "created_at").
		From("payments").
		Where(squirrel.Eq{"admission_number": admissionNumber}).
		OrderBy("payment_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list payments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.AdmissionNumber, &p.Amount, &p.Mode, &p.Reference, &p.PaymentDate, &p.RecordedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}
