package adspend

import "time"

// Category groups ad expenses, e.g. one per ad platform.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expense is one booked advertising cost. Expenses are dated, not tied to a
// sales channel; P&L views fold them in only for the all-channels picture.
type Expense struct {
	ID           int64     `json:"id"`
	ExpenseDate  time.Time `json:"expense_date"`
	Amount       float64   `json:"amount"`
	AdCategoryID int64     `json:"ad_category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Memo         string    `json:"memo,omitempty"`
	CreatedBy    int64     `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExpenseFilter narrows expense listings by month range and category. Zero
// values mean "no restriction".
type ExpenseFilter struct {
	FromYM       string
	ToYM         string
	AdCategoryID int64
}
