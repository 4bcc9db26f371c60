package importer

import (
	"errors"
	"time"
)

// Mode selects how an import treats rows already stored for the same
// period and channel.
type Mode string

const (
	// ModeOverwrite replaces every stored record for the period and channel.
	ModeOverwrite Mode = "overwrite"
	// ModeAppend keeps stored records and adds the new file on top.
	ModeAppend Mode = "append"
)

// ErrUnknownMode means the request named no usable import mode. The mode is
// never defaulted: overwrite deletes data, so the caller must say which one
// they want.
var ErrUnknownMode = errors.New("importer: mode must be overwrite or append")

// ValidMode reports whether m is a known import mode.
func ValidMode(m Mode) bool {
	return m == ModeOverwrite || m == ModeAppend
}

// DataSource identifies the export format of an uploaded file.
type DataSource string

const (
	// DataSourceNE is the order platform's SKU-keyed CSV export.
	DataSourceNE DataSource = "ne"
	// DataSourceAmazon is the Amazon business report, keyed by parent ASIN.
	DataSourceAmazon DataSource = "amazon"
)

// ValidDataSource reports whether d is a known data source.
func ValidDataSource(d DataSource) bool {
	return d == DataSourceNE || d == DataSourceAmazon
}

// History records one completed import run. RecordCount is the number of
// sales records the run actually inserted; ImportedBy is the user who ran it.
type History struct {
	ID             int64      `json:"id"`
	TargetYM       string     `json:"target_ym"`
	SalesChannelID int64      `json:"sales_channel_id"`
	FileName       string     `json:"file_name"`
	Mode           Mode       `json:"mode"`
	DataSource     DataSource `json:"data_source"`
	Comment        string     `json:"comment"`
	RecordCount    int        `json:"record_count"`
	ImportedBy     int64      `json:"imported_by"`
	ImportedAt     time.Time  `json:"imported_at"`
}

// SalesRecord is one aggregated line of a sales import: quantity and amounts
// for a single SKU within the period and channel. SaleDate is the date the
// record entered the system (the exports carry no per-row dates) and
// CreatedBy is the importing user.
type SalesRecord struct {
	ID                int64     `json:"id"`
	ImportHistoryID   int64     `json:"import_history_id"`
	TargetYM          string    `json:"target_ym"`
	SalesChannelID    int64     `json:"sales_channel_id"`
	ProductCode       string    `json:"product_code"`
	SKU               string    `json:"sku"`
	SaleDate          time.Time `json:"sale_date"`
	Quantity          int       `json:"quantity"`
	SalesAmountExcl   float64   `json:"sales_amount_excl_tax"`
	CostAmount        float64   `json:"cost_amount"`
	GrossProfitAmount float64   `json:"gross_profit_amount"`
	CreatedBy         int64     `json:"created_by"`
}

// Row is one usable line decoded from an uploaded sales file. Amounts are
// tax inclusive as exported by the platform. SKU holds the parent ASIN for
// Amazon files, which have no SKU column.
type Row struct {
	SKU           string
	Name          string
	Quantity      int
	AmountInclTax float64
}

// UnregisteredASIN is an Amazon row whose parent ASIN matches no product.
type UnregisteredASIN struct {
	ASIN  string `json:"asin"`
	Title string `json:"title"`
}

// Result summarizes an import run for the caller. UnmatchedCodes holds the
// distinct parent codes routed to candidate review, sorted; Message is set
// when the run inserted nothing but surfaced candidates. For Amazon files,
// UnregisteredASINs lists rows that matched no product; unless the caller
// asked to skip them the run stops there with HistoryID zero and nothing
// written.
type Result struct {
	HistoryID         int64              `json:"history_id"`
	TotalRows         int                `json:"total_rows"`
	Inserted          int                `json:"inserted"`
	SkippedUnmanaged  int                `json:"skipped_unmanaged"`
	SkippedEmpty      int                `json:"skipped_empty"`
	NewCandidates     int                `json:"new_candidates"`
	UnmatchedCodes    []string           `json:"unmatched_codes,omitempty"`
	UnregisteredASINs []UnregisteredASIN `json:"unregistered_asins,omitempty"`
	Message           string             `json:"message,omitempty"`
}

// HistoryFilter narrows history listings. Zero values mean "no restriction".
type HistoryFilter struct {
	TargetYM       string
	SalesChannelID int64
}
