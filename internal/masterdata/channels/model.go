package channels

import "time"

// Channel is a sales channel such as a marketplace storefront. Imports and
// P&L aggregation are always scoped to one channel.
type Channel struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
