package domain

import "time"

type DiagnosisReport struct {
	ID        string
	AccountID string
	Symptoms  string
	Diagnosis string
	CreatedAt time.Time
	UpdatedAt time.Time
}
