// internal/domain/anomaly/errors.go
package anomaly

import "errors"

var (
	// ErrQueryNotFound indicates a missing anomaly query
	ErrQueryNotFound = errors.New("anomaly query not found")

	// ErrQueryAlreadyResponded is returned when the query left the pending
	// state before this response was applied
	ErrQueryAlreadyResponded = errors.New("anomaly query has already been responded to")

	// ErrFindingNotFound is returned when a query is raised for a product
	// that has no finding in the request's anomaly report
	ErrFindingNotFound = errors.New("no anomaly finding for this product in the request")

	// ErrQuerySystemDisabled is returned when the query workflow is switched
	// off for this deployment
	ErrQuerySystemDisabled = errors.New("anomaly query system is not enabled")
)
