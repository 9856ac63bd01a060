// internal/domain/request/errors.go
package request

import (
	"errors"
	"fmt"
)

// State and not-found failures. Not retryable without new input.
var (
	// ErrRequestNotFound indicates a missing request document; treated as
	// an integrity error and logged as unexpected.
	ErrRequestNotFound = errors.New("stock request not found")

	// ErrAlreadyReviewed is returned when the request left the pending
	// state before this review was applied. Typically a stale UI.
	ErrAlreadyReviewed = errors.New("stock request has already been reviewed")

	// ErrMissingDeliveryDate is returned when at least one item is being
	// fulfilled but no delivery date was supplied.
	ErrMissingDeliveryDate = errors.New("delivery date is required when any item is available or partially available")
)

// InvalidPartialQuantityError is returned when a partially_available decision
// carries an approved quantity outside (0, requested).
type InvalidPartialQuantityError struct {
	ProductID         uint
	RequestedQuantity int
	ApprovedQuantity  int
}

func (e *InvalidPartialQuantityError) Error() string {
	return fmt.Sprintf("invalid partial quantity for product %d: approved %d of requested %d",
		e.ProductID, e.ApprovedQuantity, e.RequestedQuantity)
}

// MissingRestockDateError is returned when a not_available decision has no
// restock date.
type MissingRestockDateError struct {
	ProductID uint
}

func (e *MissingRestockDateError) Error() string {
	return fmt.Sprintf("restock date is required for unavailable product %d", e.ProductID)
}

// MissingDecisionError is returned when a request item has no matching
// decision. Freezing half-reviewed items would break the reviewed-exactly-once
// invariant, so the whole review is refused.
type MissingDecisionError struct {
	ProductID uint
}

func (e *MissingDecisionError) Error() string {
	return fmt.Sprintf("no decision supplied for product %d", e.ProductID)
}

// DuplicateDecisionError is returned when two decisions target the same
// product. Letting the last one win would hide reviewer mistakes.
type DuplicateDecisionError struct {
	ProductID uint
}

func (e *DuplicateDecisionError) Error() string {
	return fmt.Sprintf("multiple decisions supplied for product %d", e.ProductID)
}

// UnknownItemDecisionError is returned when a decision references a product
// that is not part of the request.
type UnknownItemDecisionError struct {
	ProductID uint
}

func (e *UnknownItemDecisionError) Error() string {
	return fmt.Sprintf("decision references product %d which is not in the request", e.ProductID)
}

// InvalidAvailabilityError is returned for an unrecognized availability value.
type InvalidAvailabilityError struct {
	ProductID    uint
	Availability string
}

func (e *InvalidAvailabilityError) Error() string {
	return fmt.Sprintf("invalid availability %q for product %d", e.Availability, e.ProductID)
}
