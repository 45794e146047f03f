// Package fees derives a student's fee statement from program cost, year of
// study and payments. It has no I/O and no hidden state.
package fees

import "math"

// Statement is the result of Compute.
type Statement struct {
	// ProgramCost is nil when the course could not be resolved to a program.
	ProgramCost *float64 `json:"programCost"`
	YearOfStudy int      `json:"yearOfStudy"`
	TotalFees   float64  `json:"totalFees"`
	TotalPaid   float64  `json:"totalPaid"`
	Balance     float64  `json:"balance"`
	// CanRegister is balance < threshold. It is always false when fees are undetermined.
	CanRegister    bool    `json:"canRegister"`
	FeesDetermined bool    `json:"feesDetermined"`
	FeeThreshold   float64 `json:"feeThreshold"`
}

// Compute builds a Statement:
//
//	totalFees   = cost * year
//	balance     = totalFees - sum(payments)
//	canRegister = balance < threshold
//
// A nil cost contributes 0 to totalFees and yields FeesDetermined=false. Balance may
// be negative when a student has overpaid.
func Compute(programCost *float64, yearOfStudy int, payments []float64, threshold float64) Statement {
	var cost float64
	if programCost != nil {
		cost = *programCost
	}

	var paid float64
	for _, p := range payments {
		paid += p
	}

	totalFees := round2(cost * float64(yearOfStudy))
	paid = round2(paid)
	balance := round2(totalFees - paid)

	determined := programCost != nil
	return Statement{
		ProgramCost:    programCost,
		YearOfStudy:    yearOfStudy,
		TotalFees:      totalFees,
		TotalPaid:      paid,
		Balance:        balance,
		CanRegister:    determined && balance < threshold,
		FeesDetermined: determined,
		FeeThreshold:   threshold,
	}
}

// round2 rounds to cents so float drift in long payment lists never flips the
// threshold comparison.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
