package candidates

import "time"

// Status tracks the review state of a candidate surfaced by a sales import.
type Status string

const (
	StatusPending    Status = "pending"
	StatusRegistered Status = "registered"
	StatusIgnored    Status = "ignored"
)

// Candidate is an unknown product code first seen during a sales import.
// One row per (parent code, sample SKU) pair; re-encounters refresh the
// sample name but never duplicate the row.
type Candidate struct {
	ID          int64     `json:"id"`
	ProductCode string    `json:"product_code"`
	SampleSKU   string    `json:"sample_sku"`
	SampleName  string    `json:"sample_name"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is one of the known review states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusRegistered, StatusIgnored:
		return true
	}
	return false
}
