package invoice

import "github.com/shopspring/decimal"

// Status describes how completely a document has been paid.
type Status string

const (
	// StatusPaid means the recorded payments cover the full total.
	StatusPaid Status = "paid"
	// StatusPartial means some payment was recorded but a balance remains.
	StatusPartial Status = "partial"
	// StatusUnpaid is the sale/cart terminal label for no payment.
	StatusUnpaid Status = "unpaid"
	// StatusCredit is the purchase terminal label for no payment.
	StatusCredit Status = "credit"
)

// Vocabulary selects the terminal label a document type uses for the
// no-payment band. Sales and the POS cart say "unpaid"; purchases say
// "credit". The numeric bands are identical either way.
type Vocabulary int

const (
	// VocabularySale uses {paid, partial, unpaid}.
	VocabularySale Vocabulary = iota
	// VocabularyPurchase uses {paid, partial, credit}.
	VocabularyPurchase
)

// terminal returns the vocabulary's no-payment label.
func (v Vocabulary) terminal() Status {
	if v == VocabularyPurchase {
		return StatusCredit
	}
	return StatusUnpaid
}

// Classify maps a total/paid pair onto the three payment bands.
//
// A non-positive total classifies as paid regardless of payment: zero owed
// is satisfied, so a fully discounted document with no payment does not
// fall through to the unpaid band.
func Classify(total, paid decimal.Decimal, vocab Vocabulary) Status {
	switch {
	case !total.IsPositive():
		return StatusPaid
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return vocab.terminal()
	}
}
