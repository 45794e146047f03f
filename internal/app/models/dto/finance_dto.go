package dto

import (
	"time"

	"github.com/yigit/uniportal/internal/app/models"
)

// CreateProgramRequest registers a program and its per-year cost
type CreateProgramRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Department  string  `json:"department" binding:"required,max=128"`
	CostPerYear float64 `json:"costPerYear" binding:"required,gt=0"`
}

// UpdateProgramCostRequest changes a program's per-year cost
type UpdateProgramCostRequest struct {
	CostPerYear float64 `json:"costPerYear" binding:"required,gt=0"`
}

// ProgramCostResponse is the resolver output for a course code
type ProgramCostResponse struct {
	CourseCode    string   `json:"courseCode"`
	CanonicalName string   `json:"canonicalName"`
	CostPerYear   *float64 `json:"costPerYear"`
	Known         bool     `json:"known"`
}

// AliasTableResponse exposes the course-code alias table
type AliasTableResponse struct {
	Version int         `json:"version"`
	Aliases interface{} `json:"aliases"`
}

// RecordPaymentRequest records a fee payment
type RecordPaymentRequest struct {
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Mode        string     `json:"mode" binding:"required"`
	Reference   string     `json:"reference" binding:"required,max=128"`
	PaymentDate *time.Time `json:"paymentDate"`
}

// PaymentSummaryResponse lists a student's payments and their total
type PaymentSummaryResponse struct {
	AdmissionNumber string           `json:"admissionNumber"`
	Payments        []models.Payment `json:"payments"`
	TotalPaid       float64          `json:"totalPaid"`
}

// EligibilityResponse is the fee statement and registration decision.
// TotalFees and Balance are null when the program cost is unknown.
type EligibilityResponse struct {
	AdmissionNumber string   `json:"admissionNumber"`
	CourseCode      string   `json:"courseCode"`
	ProgramName     string   `json:"programName"`
	YearOfStudy     int      `json:"yearOfStudy"`
	ProgramCost     *float64 `json:"programCost"`
	TotalFees       *float64 `json:"totalFees"`
	TotalPaid       float64  `json:"totalPaid"`
	Balance         *float64 `json:"balance"`
	CanRegister     bool     `json:"canRegister"`
	FeesDetermined  bool     `json:"feesDetermined"`
	FeeThreshold    float64  `json:"feeThreshold"`
}
