// internal/domain/inventory/errors.go
package inventory

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is returned when a referenced product does not exist.
// This indicates an integrity problem, not operator input error.
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError is returned when a conditional deduction cannot be
// covered by the product's live stock. Expected under concurrent reviews.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is an InsufficientStockError
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
