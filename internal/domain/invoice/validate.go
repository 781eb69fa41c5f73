package invoice

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNoItems is returned when a document has no line items at all.
var ErrNoItems = errors.New("at least one item is required")

// MissingProductError indicates a line item without a product reference.
type MissingProductError struct {
	Index int
}

func (e *MissingProductError) Error() string {
	return fmt.Sprintf("item %d has no product selected", e.Index+1)
}

// NegativeLineTotalError indicates a line discount larger than the line's
// quantity * price. The engine surfaces the negative total instead of
// clamping; this error blocks it from being persisted.
type NegativeLineTotalError struct {
	Index int
}

func (e *NegativeLineTotalError) Error() string {
	return fmt.Sprintf("item %d discount exceeds the line amount", e.Index+1)
}

// Validate runs the pre-submission domain checks on a recalculated
// document. The calculators themselves never reject input; these checks
// belong to the caller right before the submit flow.
func Validate(doc *Document) error {
	if len(doc.Items) == 0 {
		return ErrNoItems
	}
	for i, item := range doc.Items {
		if item.ProductID == 0 {
			return &MissingProductError{Index: i}
		}
		if item.LineTotal.IsNegative() {
			return &NegativeLineTotalError{Index: i}
		}
	}
	return nil
}
