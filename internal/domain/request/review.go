// internal/domain/request/review.go
package request

import (
	"fmt"
	"strings"
	"time"
)

// Outbound event kinds emitted by the request workflows
const (
	EventRequestSubmitted         = "request_submitted"
	EventRequestApproved          = "request_approved"
	EventRequestRejected          = "request_rejected"
	EventRequestPartiallyApproved = "request_partially_approved"
)

// ItemDecision represents the warehouse decision for one request item
type ItemDecision struct {
	ProductID              uint         `json:"product_id" binding:"required"`
	Availability           Availability `json:"availability" binding:"required"`
	ApprovedQuantity       int          `json:"approved_quantity"`
	ItemRemarks            string       `json:"item_remarks,omitempty"`
	RestockDate            *time.Time   `json:"restock_date,omitempty"`
	CanFulfillAfterRestock bool         `json:"can_fulfill_after_restock,omitempty"`
}

// ReviewInput represents a complete review submission
type ReviewInput struct {
	Decisions      []ItemDecision `json:"decisions" binding:"required,min=1,dive"`
	DeliveryDate   *time.Time     `json:"delivery_date,omitempty"`
	GeneralRemarks string         `json:"general_remarks,omitempty"`
}

// Review applies a warehouse manager's decisions to a pending request.
// Validation happens before any write; the status transition, the conditional
// stock deductions and the item freeze then commit as one transaction. A
// request transitions out of pending exactly once: the status write is a
// compare-and-set, so a racing second review observes ErrAlreadyReviewed.
func (s *Service) Review(requestID, reviewerID uint, input *ReviewInput) (*StockRequest, error) {
	stockRequest, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}
	if stockRequest.IsReviewed() {
		return nil, ErrAlreadyReviewed
	}

	reviewed, status, deliveryDate, err := buildReviewedItems(stockRequest.Items, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Compare-and-set on status: exactly one concurrent review wins
	updates := map[string]interface{}{
		"status":        status,
		"reviewed_by":   reviewerID,
		"reviewed_at":   now,
		"delivery_date": deliveryDate,
	}
	if input.GeneralRemarks != "" {
		updates["general_remarks"] = input.GeneralRemarks
	}

	res := tx.Model(&StockRequest{}).
		Where("id = ? AND status = ?", requestID, StatusPending).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update request status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrAlreadyReviewed
	}

	// Conditional deductions; any shortfall aborts the whole review
	for i := range reviewed {
		item := &reviewed[i]
		if !item.RequiresDeduction() {
			continue
		}

		movement, err := s.inventorySvc.DeductTx(tx, item.ProductID, item.ApprovedQuantity)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		movement.ReferenceType = "stock_request"
		movement.ReferenceID = requestID
		movement.CreatedBy = reviewerID
		movement.Notes = fmt.Sprintf("request %s", stockRequest.RequestNumber)
		if err := tx.Create(movement).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to record stock movement: %w", err)
		}
	}

	// Freeze the rebuilt items wholesale
	for i := range reviewed {
		if err := tx.Save(&reviewed[i]).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to persist reviewed item: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	updated, err := s.Get(requestID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		go s.notifyReviewed(updated)
	}

	return updated, nil
}

// buildReviewedItems validates decisions against the request items and
// returns fresh item values carrying the frozen decision fields, the derived
// aggregate status and the effective delivery date. Pure; no database access.
func buildReviewedItems(items []RequestItem, input *ReviewInput) ([]RequestItem, RequestStatus, *time.Time, error) {
	decisions := make(map[uint]*ItemDecision, len(input.Decisions))
	for i := range input.Decisions {
		d := &input.Decisions[i]
		if _, dup := decisions[d.ProductID]; dup {
			return nil, "", nil, &DuplicateDecisionError{ProductID: d.ProductID}
		}
		decisions[d.ProductID] = d
	}

	known := make(map[uint]bool, len(items))
	for i := range items {
		known[items[i].ProductID] = true
	}
	for productID := range decisions {
		if !known[productID] {
			return nil, "", nil, &UnknownItemDecisionError{ProductID: productID}
		}
	}

	reviewed := make([]RequestItem, 0, len(items))
	available := 0
	notAvailable := 0

	for _, item := range items {
		decision, ok := decisions[item.ProductID]
		if !ok {
			return nil, "", nil, &MissingDecisionError{ProductID: item.ProductID}
		}

		item.ItemRemarks = decision.ItemRemarks
		item.CanFulfillAfterRestock = decision.CanFulfillAfterRestock

		switch decision.Availability {
		case AvailabilityAvailable:
			// Approved quantity is derived, never trusted from the caller
			item.Availability = AvailabilityAvailable
			item.ApprovedQuantity = item.RequestedQuantity
			item.RestockDate = nil
			available++

		case AvailabilityPartial:
			if decision.ApprovedQuantity <= 0 || decision.ApprovedQuantity >= item.RequestedQuantity {
				return nil, "", nil, &InvalidPartialQuantityError{
					ProductID:         item.ProductID,
					RequestedQuantity: item.RequestedQuantity,
					ApprovedQuantity:  decision.ApprovedQuantity,
				}
			}
			item.Availability = AvailabilityPartial
			item.ApprovedQuantity = decision.ApprovedQuantity
			item.RestockDate = decision.RestockDate

		case AvailabilityNotAvailable:
			if decision.RestockDate == nil {
				return nil, "", nil, &MissingRestockDateError{ProductID: item.ProductID}
			}
			item.Availability = AvailabilityNotAvailable
			item.ApprovedQuantity = 0
			item.RestockDate = decision.RestockDate
			notAvailable++

		default:
			return nil, "", nil, &InvalidAvailabilityError{
				ProductID:    item.ProductID,
				Availability: string(decision.Availability),
			}
		}

		reviewed = append(reviewed, item)
	}

	status := deriveStatus(len(items), available, notAvailable)

	deliveryDate := input.DeliveryDate
	if status == StatusRejected {
		// Rejection path: nothing ships, the delivery date is derived away
		deliveryDate = nil
	} else if deliveryDate == nil {
		return nil, "", nil, ErrMissingDeliveryDate
	}

	return reviewed, status, deliveryDate, nil
}

// deriveStatus computes the aggregate request status. Deterministic, no ties.
func deriveStatus(total, available, notAvailable int) RequestStatus {
	switch {
	case available == total:
		return StatusApproved
	case notAvailable == total:
		return StatusRejected
	default:
		return StatusPartiallyApproved
	}
}

// notifyReviewed emits the outcome event to the original requester
func (s *Service) notifyReviewed(stockRequest *StockRequest) {
	var eventKind, title string
	switch stockRequest.Status {
	case StatusApproved:
		eventKind = EventRequestApproved
		title = fmt.Sprintf("Request %s approved", stockRequest.RequestNumber)
	case StatusRejected:
		eventKind = EventRequestRejected
		title = fmt.Sprintf("Request %s rejected", stockRequest.RequestNumber)
	default:
		eventKind = EventRequestPartiallyApproved
		title = fmt.Sprintf("Request %s partially approved", stockRequest.RequestNumber)
	}

	s.notifier.Notify(stockRequest.RequestedBy, eventKind, title, buildReviewSummary(stockRequest), map[string]interface{}{
		"request_id":     stockRequest.ID,
		"request_number": stockRequest.RequestNumber,
		"status":         stockRequest.Status,
	})
}

// buildReviewSummary renders a human-readable per-item breakdown of the
// review outcome, including restock dates for unavailable items.
func buildReviewSummary(stockRequest *StockRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Request %s: %s.", stockRequest.RequestNumber, strings.ReplaceAll(string(stockRequest.Status), "_", " "))
	if stockRequest.DeliveryDate != nil {
		fmt.Fprintf(&b, " Delivery on %s.", stockRequest.DeliveryDate.Format("2006-01-02"))
	}

	for _, item := range stockRequest.Items {
		switch item.Availability {
		case AvailabilityAvailable:
			fmt.Fprintf(&b, "\n- %s: %d approved", item.ProductName, item.ApprovedQuantity)
		case AvailabilityPartial:
			fmt.Fprintf(&b, "\n- %s: %d of %d approved", item.ProductName, item.ApprovedQuantity, item.RequestedQuantity)
		case AvailabilityNotAvailable:
			fmt.Fprintf(&b, "\n- %s: not available", item.ProductName)
			if item.RestockDate != nil {
				fmt.Fprintf(&b, ", restock expected %s", item.RestockDate.Format("2006-01-02"))
			}
		}
		if item.ItemRemarks != "" {
			fmt.Fprintf(&b, " (%s)", item.ItemRemarks)
		}
	}

	return b.String()
}
