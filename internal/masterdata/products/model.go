package products

import (
	"fmt"
	"strings"
	"time"
)

// ManagementStatus controls whether a product participates in sales imports
// and P&L aggregation.
type ManagementStatus string

const (
	StatusManaged   ManagementStatus = "managed"
	StatusUnmanaged ManagementStatus = "unmanaged"
)

// ProductType distinguishes own-brand goods from purchased goods.
type ProductType string

const (
	TypeOwnBrand  ProductType = "own"
	TypePurchased ProductType = "purchased"
)

// Product is a master record keyed by the canonical parent code. SKU variants
// from the order platform reduce to this code during import. ASIN is the
// parent ASIN used to match Amazon business-report rows; empty when the
// product is not sold on Amazon.
type Product struct {
	Code              string           `json:"product_code"`
	Name              string           `json:"product_name"`
	SalesPriceExclTax float64          `json:"sales_price_excl_tax"`
	CostExclTax       float64          `json:"cost_excl_tax"`
	Type              ProductType      `json:"product_type"`
	Status            ManagementStatus `json:"management_status"`
	ASIN              string           `json:"asin,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Managed reports whether sales imports should record rows for this product.
func (p Product) Managed() bool {
	return p.Status == StatusManaged
}

// ParseManagementStatus normalizes the stored English codes and the Japanese
// spellings used by the legacy data interchangeably.
func ParseManagementStatus(s string) (ManagementStatus, error) {
	switch strings.TrimSpace(s) {
	case string(StatusManaged), "管理中":
		return StatusManaged, nil
	case string(StatusUnmanaged), "管理外":
		return StatusUnmanaged, nil
	}
	return "", fmt.Errorf("unknown management status %q", s)
}

// ParseProductType normalizes product type spellings, including the Japanese
// forms used by the legacy data.
func ParseProductType(s string) (ProductType, error) {
	switch strings.TrimSpace(s) {
	case string(TypeOwnBrand), "自社":
		return TypeOwnBrand, nil
	case string(TypePurchased), "仕入":
		return TypePurchased, nil
	}
	return "", fmt.Errorf("unknown product type %q", s)
}
