package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/models/dto"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

// PaymentService records fee payments and aggregates them per student
type PaymentService struct {
	payments      PaymentStore
	students      StudentStore
	users         UserStore
	notifications *NotificationService
	audit         *AuditService
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	now           func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payments PaymentStore,
	students StudentStore,
	users UserStore,
	notifications *NotificationService,
	audit *AuditService,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		students:      students,
		users:         users,
		notifications: notifications,
		audit:         audit,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// Aggregate returns a student's payments, newest first, and their sum. A student
// with no payments has an empty list and a zero total.
func (s *PaymentService) Aggregate(ctx context.Context, admissionNumber string) (*dto.PaymentSummaryResponse, error) {
	admissionNumber = NormalizeAdmissionNumber(admissionNumber)
	list, err := s.payments.ListByAdmissionNumber(ctx, admissionNumber)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}

	var total float64
	for _, p := range list {
		total += p.Amount
	}

	return &dto.PaymentSummaryResponse{
		AdmissionNumber: admissionNumber,
		Payments:        list,
		TotalPaid:       math.Round(total*100) / 100,
	}, nil
}

// Amounts returns just the payment amounts, for the balance computation
func (s *PaymentService) Amounts(ctx context.Context, admissionNumber string) ([]float64, error) {
	list, err := s.payments.ListByAdmissionNumber(ctx, admissionNumber)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	amounts := make([]float64, len(list))
	for i, p := range list {
		amounts[i] = p.Amount
	}
	return amounts, nil
}

// Record stores a payment for a known student. The mode must be one of the
// supported modes and the reference must be present. The student is notified.
func (s *PaymentService) Record(ctx context.Context, actor auth.Principal, admissionNumber string, req *dto.RecordPaymentRequest) (*models.Payment, error) {
	mode, ok := models.ParsePaymentMode(req.Mode)
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidPaymentMode,
			fmt.Sprintf("unknown payment mode %q; use MOBILE_MONEY, BANK or BURSARY", req.Mode))
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, apperrors.NewValidationError("reference", mode.ReferenceLabel()+" is required")
	}

	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount", "amount must be greater than zero")
	}
	amount := math.Round(req.Amount*100) / 100

	student, err := s.students.GetByAdmissionNumber(ctx, NormalizeAdmissionNumber(admissionNumber))
	if err != nil {
		return nil, err
	}

	now := s.now()
	paidAt := now
	if req.PaymentDate != nil {
		if req.PaymentDate.After(now) {
			return nil, apperrors.NewValidationError("paymentDate", "payment date cannot be in the future")
		}
		paidAt = *req.PaymentDate
	}

	payment := &models.Payment{
		AdmissionNumber: student.AdmissionNumber,
		Amount:          amount,
		Mode:            mode,
		Reference:       reference,
		PaymentDate:     paidAt,
		RecordedBy:      actor.UserID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(mode)).Inc()
	s.logger.Info().
		Int64("paymentID", payment.ID).
		Str("admissionNumber", payment.AdmissionNumber).
		Str("mode", string(mode)).
		Float64("amount", amount).
		Msg("Payment recorded")

	s.audit.Record(ctx, actor, ActionPaymentRecorded, "payment", strconv.FormatInt(payment.ID, 10), map[string]any{
		"admissionNumber": payment.AdmissionNumber,
		"amount":          amount,
		"mode":            string(mode),
		"reference":       reference,
	})
	s.notifyStudent(ctx, payment)

	return payment, nil
}

func (s *PaymentService) notifyStudent(ctx context.Context, p *models.Payment) {
	user, err := s.users.GetByAdmissionNumber(ctx, p.AdmissionNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Warn().Err(err).Str("admissionNumber", p.AdmissionNumber).Msg("Failed to look up student account for payment notification")
		}
		return
	}

	s.notifications.Notify(ctx, NotificationInput{
		Recipient: models.Recipient{ID: user.ID, Type: models.UserTypeStudent},
		Title:     "Payment received",
		Message: fmt.Sprintf("Payment of %.2f via %s received (%s %s).",
			p.Amount, strings.ReplaceAll(strings.ToLower(string(p.Mode)), "_", " "), p.Mode.ReferenceLabel(), p.Reference),
		Category: models.CategoryPayment,
	})
}
