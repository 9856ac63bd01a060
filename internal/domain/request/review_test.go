// internal/domain/request/review_test.go
package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func twoItems() []RequestItem {
	return []RequestItem{
		{ID: 1, RequestID: 1, Position: 0, ProductID: 10, ProductName: "Copy Paper A4", RequestedQuantity: 20},
		{ID: 2, RequestID: 1, Position: 1, ProductID: 11, ProductName: "Toner Cartridge", RequestedQuantity: 4},
	}
}

func TestBuildReviewedItems(t *testing.T) {
	t.Run("all available derives approved status and full quantities", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityAvailable},
				{ProductID: 11, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		reviewed, status, deliveryDate, err := buildReviewedItems(twoItems(), input)

		require.NoError(t, err)
		assert.Equal(t, StatusApproved, status)
		require.NotNil(t, deliveryDate)
		assert.Equal(t, 20, reviewed[0].ApprovedQuantity)
		assert.Equal(t, 4, reviewed[1].ApprovedQuantity)
	})

	t.Run("approved quantity from the caller is ignored for available items", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityAvailable, ApprovedQuantity: 3},
				{ProductID: 11, Availability: AvailabilityAvailable, ApprovedQuantity: 999},
			},
			DeliveryDate: date("2026-09-05"),
		}

		reviewed, _, _, err := buildReviewedItems(twoItems(), input)

		require.NoError(t, err)
		assert.Equal(t, 20, reviewed[0].ApprovedQuantity)
		assert.Equal(t, 4, reviewed[1].ApprovedQuantity)
	})

	t.Run("mixed decisions derive partially approved", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityPartial, ApprovedQuantity: 12},
				{ProductID: 11, Availability: AvailabilityNotAvailable, RestockDate: date("2026-09-20")},
			},
			DeliveryDate: date("2026-09-05"),
		}

		reviewed, status, _, err := buildReviewedItems(twoItems(), input)

		require.NoError(t, err)
		assert.Equal(t, StatusPartiallyApproved, status)
		assert.Equal(t, 12, reviewed[0].ApprovedQuantity)
		assert.Equal(t, 0, reviewed[1].ApprovedQuantity)
		require.NotNil(t, reviewed[1].RestockDate)
	})

	t.Run("all unavailable derives rejected and clears the delivery date", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityNotAvailable, RestockDate: date("2026-09-20")},
				{ProductID: 11, Availability: AvailabilityNotAvailable, RestockDate: date("2026-09-22")},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, status, deliveryDate, err := buildReviewedItems(twoItems(), input)

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, status)
		assert.Nil(t, deliveryDate)
	})

	t.Run("partial quantity equal to requested is invalid", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityPartial, ApprovedQuantity: 20},
				{ProductID: 11, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		var invalid *InvalidPartialQuantityError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, uint(10), invalid.ProductID)
		assert.Equal(t, 20, invalid.ApprovedQuantity)
	})

	t.Run("partial quantity of zero is invalid", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityPartial, ApprovedQuantity: 0},
				{ProductID: 11, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		var invalid *InvalidPartialQuantityError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("unavailable item without restock date is refused", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityNotAvailable},
				{ProductID: 11, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		var missing *MissingRestockDateError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, uint(10), missing.ProductID)
	})

	t.Run("fulfilling anything without a delivery date is refused", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityAvailable},
				{ProductID: 11, Availability: AvailabilityNotAvailable, RestockDate: date("2026-09-20")},
			},
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		assert.ErrorIs(t, err, ErrMissingDeliveryDate)
	})

	t.Run("every item needs a decision", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		var missing *MissingDecisionError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, uint(11), missing.ProductID)
	})

	t.Run("duplicate decisions for the same product are refused", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityAvailable},
				{ProductID: 10, Availability: AvailabilityNotAvailable, RestockDate: date("2026-09-20")},
				{ProductID: 11, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		var duplicate *DuplicateDecisionError
		require.ErrorAs(t, err, &duplicate)
		assert.Equal(t, uint(10), duplicate.ProductID)
	})

	t.Run("decisions for foreign products are refused", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: AvailabilityAvailable},
				{ProductID: 11, Availability: AvailabilityAvailable},
				{ProductID: 99, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		var unknown *UnknownItemDecisionError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, uint(99), unknown.ProductID)
	})

	t.Run("unrecognized availability is refused", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 10, Availability: "backordered"},
				{ProductID: 11, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		_, _, _, err := buildReviewedItems(twoItems(), input)

		var invalid *InvalidAvailabilityError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "backordered", invalid.Availability)
	})

	t.Run("item order is preserved in the reviewed result", func(t *testing.T) {
		input := &ReviewInput{
			Decisions: []ItemDecision{
				{ProductID: 11, Availability: AvailabilityAvailable},
				{ProductID: 10, Availability: AvailabilityAvailable},
			},
			DeliveryDate: date("2026-09-05"),
		}

		reviewed, _, _, err := buildReviewedItems(twoItems(), input)

		require.NoError(t, err)
		assert.Equal(t, uint(10), reviewed[0].ProductID)
		assert.Equal(t, uint(11), reviewed[1].ProductID)
	})
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusApproved, deriveStatus(3, 3, 0))
	assert.Equal(t, StatusRejected, deriveStatus(3, 0, 3))
	assert.Equal(t, StatusPartiallyApproved, deriveStatus(3, 2, 1))
	assert.Equal(t, StatusPartiallyApproved, deriveStatus(3, 0, 2))
}
