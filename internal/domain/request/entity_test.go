// internal/domain/request/entity_test.go
package request

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^SR-\d{8}-[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := GenerateRequestNumber()
		assert.Regexp(t, pattern, number)
		assert.False(t, seen[number], "request numbers should not repeat")
		seen[number] = true
	}
}

func TestIsReviewed(t *testing.T) {
	r := &StockRequest{Status: StatusPending}
	assert.False(t, r.IsReviewed())

	for _, status := range []RequestStatus{StatusApproved, StatusRejected, StatusPartiallyApproved} {
		r.Status = status
		assert.True(t, r.IsReviewed())
	}
}

func TestRequiresDeduction(t *testing.T) {
	assert.True(t, (&RequestItem{Availability: AvailabilityAvailable}).RequiresDeduction())
	assert.True(t, (&RequestItem{Availability: AvailabilityPartial}).RequiresDeduction())
	assert.False(t, (&RequestItem{Availability: AvailabilityNotAvailable}).RequiresDeduction())
	assert.False(t, (&RequestItem{}).RequiresDeduction())
}
