package models

import (
	"strings"
	"time"
)

// PaymentMode is how a fee payment reached the institution
type PaymentMode string

const (
	PaymentModeMobileMoney PaymentMode = "MOBILE_MONEY"
	PaymentModeBank        PaymentMode = "BANK"
	PaymentModeBursary     PaymentMode = "BURSARY"
)

// ParsePaymentMode normalises user input such as "mobile money" or "Bank".
func ParsePaymentMode(s string) (PaymentMode, bool) {
	normalized := strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(strings.TrimSpace(s)))
	switch PaymentMode(normalized) {
	case PaymentModeMobileMoney, PaymentModeBank, PaymentModeBursary:
		return PaymentMode(normalized), true
	}
	return "", false
}

// ReferenceLabel names the mode-specific reference a payment must carry.
func (m PaymentMode) ReferenceLabel() string {
	switch m {
	case PaymentModeMobileMoney:
		return "transaction id"
	case PaymentModeBank:
		return "receipt number"
	case PaymentModeBursary:
		return "bursary note"
	}
	return "reference"
}

// Payment is an immutable fee payment. There is no update or delete path.
type Payment struct {
	ID              int64       `json:"id" db:"id"`
	AdmissionNumber string      `json:"admissionNumber" db:"admission_number"`
	Amount          float64     `json:"amount" db:"amount"`
	Mode            PaymentMode `json:"mode" db:"mode"`
	Reference       string      `json:"reference" db:"reference"`
	PaymentDate     time.Time   `json:"paymentDate" db:"payment_date"`
	RecordedBy      int64       `json:"recordedBy" db:"recorded_by"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`
}
