package models

import "time"

// Program is a course offering with a per-year cost. Name is unique case-insensitively.
type Program struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Department  string    `json:"department" db:"department"`
	CostPerYear float64   `json:"costPerYear" db:"cost_per_year"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
