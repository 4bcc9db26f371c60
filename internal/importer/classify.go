package importer

import "github.com/rinori/backoffice/internal/masterdata/products"

// Outcome tags what the import does with one CSV row after SKU
// normalization.
type Outcome int

const (
	// MatchedManaged rows become sales records.
	MatchedManaged Outcome = iota
	// MatchedUnmanaged rows are dropped without a trace.
	MatchedUnmanaged
	// Unmatched rows surface a new-product candidate.
	Unmatched
)

// Classifier resolves normalized product codes and parent ASINs against the
// product master snapshot taken at the start of an import run.
type Classifier struct {
	byCode map[string]products.Product
	byASIN map[string]products.Product
}

// NewClassifier builds a classifier over the given master snapshot.
func NewClassifier(master []products.Product) *Classifier {
	byCode := make(map[string]products.Product, len(master))
	byASIN := make(map[string]products.Product)
	for _, p := range master {
		byCode[p.Code] = p
		if p.ASIN != "" {
			byASIN[p.ASIN] = p
		}
	}
	return &Classifier{byCode: byCode, byASIN: byASIN}
}

// Classify returns the outcome for a normalized code, plus the matched
// product when one exists.
func (c *Classifier) Classify(code string) (Outcome, *products.Product) {
	return outcome(c.byCode, code)
}

// ClassifyASIN resolves an Amazon parent ASIN the same way Classify resolves
// a code. Products without an ASIN never match.
func (c *Classifier) ClassifyASIN(asin string) (Outcome, *products.Product) {
	return outcome(c.byASIN, asin)
}

func outcome(index map[string]products.Product, key string) (Outcome, *products.Product) {
	p, ok := index[key]
	if !ok {
		return Unmatched, nil
	}
	if !p.Managed() {
		return MatchedUnmanaged, &p
	}
	return MatchedManaged, &p
}
