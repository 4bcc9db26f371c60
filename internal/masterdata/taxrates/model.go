package taxrates

import "time"

// TaxRate is a consumption tax rate effective from StartYM ("YYYY-MM")
// onward until a later rate supersedes it.
type TaxRate struct {
	StartYM   string    `json:"start_ym"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
