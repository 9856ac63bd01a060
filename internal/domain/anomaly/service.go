// internal/domain/anomaly/service.go
package anomaly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/request"
	"github.com/your-org/branchops-backend/internal/domain/user"
	redisdb "github.com/your-org/branchops-backend/internal/infrastructure/database/redis"
	"github.com/your-org/branchops-backend/internal/pkg/license"
	"gorm.io/gorm"
)

// Notifier receives structured events emitted by the anomaly workflows
type Notifier interface {
	Notify(recipientID uint, eventKind string, title, message string, payload map[string]interface{})
}

// Outbound event kinds
const (
	EventAnomalyDetected = "anomaly_detected"
	EventQueryRaised     = "query_response_needed"
	EventQueryResponded  = "query_responded"
)

// Service handles anomaly detection and the query workflow
type Service struct {
	db       *gorm.DB
	config   *config.Config
	cache    *redisdb.Client
	gate     license.Gate
	detector *Detector
	notifier Notifier
}

// NewService creates a new anomaly service
func NewService(db *gorm.DB, cfg *config.Config, cache *redisdb.Client, gate license.Gate, notifier Notifier) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		cache:    cache,
		gate:     gate,
		detector: NewDetector(cfg.Anomaly.Threshold, cfg.Anomaly.MinHistory),
		notifier: notifier,
	}
}

// CreateQueryRequest represents anomaly query creation data
type CreateQueryRequest struct {
	RequestID uint   `json:"request_id" binding:"required"`
	ProductID uint   `json:"product_id" binding:"required"`
	Message   string `json:"message,omitempty"`
}

// RespondRequest represents a branch's answer to an anomaly query
type RespondRequest struct {
	Response string `json:"response" binding:"required"`
}

// ListQueriesRequest represents query list parameters
type ListQueriesRequest struct {
	Page     int         `form:"page,default=1"`
	Limit    int         `form:"limit,default=20"`
	BranchID uint        `form:"branch_id"`
	Status   QueryStatus `form:"status"`
}

// ListQueriesResponse represents a page of anomaly queries
type ListQueriesResponse struct {
	Queries    []Query            `json:"queries"`
	Pagination request.Pagination `json:"pagination"`
}

// ANOMALY DETECTION

// GetReport returns the anomaly report for a stock request, serving a cached
// copy when one exists. Reports are deterministic for an unchanged history,
// so a short cache TTL only trades staleness of the baseline window.
func (s *Service) GetReport(ctx context.Context, requestID uint) (*Report, error) {
	key := reportCacheKey(requestID)
	if s.cache != nil {
		var cached Report
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	report, err := s.evaluate(requestID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Best effort; a failed cache write never fails the evaluation
		_ = s.cache.SetJSON(ctx, key, report, s.config.Anomaly.ReportCacheTTL)
	}

	return report, nil
}

// EvaluateRequest computes a fresh report, refreshes the cache and notifies
// the reviewer-facing side when anomalies are present. Called at submission
// time so the report is ready before anyone opens the request for review.
func (s *Service) EvaluateRequest(ctx context.Context, requestID uint) (*Report, error) {
	report, err := s.evaluate(requestID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, reportCacheKey(requestID), report, s.config.Anomaly.ReportCacheTTL)
	}

	if report.HasAnomalies() && s.notifier != nil {
		go s.notifyAnomalies(report)
	}

	return report, nil
}

// notifyAnomalies alerts active warehouse managers that a fresh report
// contains deviations worth a look before review
func (s *Service) notifyAnomalies(report *Report) {
	var managers []user.User
	err := s.db.Where("role = ? AND is_active = ?", user.RoleWarehouseManager, true).Find(&managers).Error
	if err != nil {
		return
	}

	title := fmt.Sprintf("Anomalies detected on request %s", report.RequestNumber)
	message := fmt.Sprintf("%d item(s) deviate from the branch baseline", len(report.Findings))

	for _, manager := range managers {
		s.notifier.Notify(manager.ID, EventAnomalyDetected, title, message, map[string]interface{}{
			"request_id":     report.RequestID,
			"request_number": report.RequestNumber,
			"branch_id":      report.BranchID,
			"findings":       len(report.Findings),
		})
	}
}

// evaluate loads the request, gathers the product histories inside the
// configured window and runs the detector. The evaluated request itself is
// excluded from the baseline so it cannot mask its own deviation.
func (s *Service) evaluate(requestID uint) (*Report, error) {
	var stockRequest request.StockRequest
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", requestID).First(&stockRequest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, request.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to retrieve stock request: %w", err)
	}

	observations := make([]Observation, 0, len(stockRequest.Items))
	productIDs := make([]uint, 0, len(stockRequest.Items))
	for _, item := range stockRequest.Items {
		observations = append(observations, Observation{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.RequestedQuantity,
		})
		productIDs = append(productIDs, item.ProductID)
	}

	history, priorRequests, err := s.loadHistory(stockRequest.BranchID, requestID, productIDs)
	if err != nil {
		return nil, err
	}

	return &Report{
		RequestID:     stockRequest.ID,
		RequestNumber: stockRequest.RequestNumber,
		BranchID:      stockRequest.BranchID,
		WindowDays:    s.config.Anomaly.WindowDays,
		Threshold:     s.config.Anomaly.Threshold,
		GeneratedAt:   time.Now().UTC(),
		Findings:      s.detector.Evaluate(observations, history, priorRequests),
	}, nil
}

// loadHistory collects the requested quantities of the branch's earlier
// requests for the given products inside the configured window, plus the
// branch's total prior request count in the window. The count covers all of
// the branch's requests, not just those containing the given products; the
// detector's history floor is a branch-level precondition.
func (s *Service) loadHistory(branchID, excludeRequestID uint, productIDs []uint) (map[uint][]int, int, error) {
	history := make(map[uint][]int, len(productIDs))
	if len(productIDs) == 0 {
		return history, 0, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -s.config.Anomaly.WindowDays)

	var priorRequests int64
	err := s.db.Model(&request.StockRequest{}).
		Where("branch_id = ?", branchID).
		Where("id <> ?", excludeRequestID).
		Where("created_at >= ?", since).
		Count(&priorRequests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count request history: %w", err)
	}

	var rows []struct {
		ProductID         uint
		RequestedQuantity int
	}
	err = s.db.Table("stock_request_items").
		Select("stock_request_items.product_id, stock_request_items.requested_quantity").
		Joins("JOIN stock_requests ON stock_requests.id = stock_request_items.request_id").
		Where("stock_requests.branch_id = ?", branchID).
		Where("stock_requests.id <> ?", excludeRequestID).
		Where("stock_requests.created_at >= ?", since).
		Where("stock_requests.deleted_at IS NULL").
		Where("stock_request_items.product_id IN ?", productIDs).
		Order("stock_requests.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load request history: %w", err)
	}

	for _, row := range rows {
		history[row.ProductID] = append(history[row.ProductID], row.RequestedQuantity)
	}

	return history, int(priorRequests), nil
}

// QUERY WORKFLOW

// CreateQuery raises a query to the branch for an anomalous item. The query
// snapshots the finding so it stays meaningful after the baseline moves.
func (s *Service) CreateQuery(ctx context.Context, userID uint, req *CreateQueryRequest) (*Query, error) {
	if !s.gate.Enabled(license.FeatureQuerySystem) {
		return nil, ErrQuerySystemDisabled
	}

	report, err := s.GetReport(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	var finding *Finding
	for i := range report.Findings {
		if report.Findings[i].ProductID == req.ProductID {
			finding = &report.Findings[i]
			break
		}
	}
	if finding == nil {
		return nil, ErrFindingNotFound
	}

	message := req.Message
	if message == "" {
		message = finding.Message()
	}

	query := &Query{
		QueryNumber:      GenerateQueryNumber(),
		RequestID:        req.RequestID,
		BranchID:         report.BranchID,
		ProductID:        finding.ProductID,
		ProductName:      finding.ProductName,
		Type:             finding.Type,
		Severity:         finding.Severity,
		ObservedQuantity: finding.ObservedQuantity,
		HistoricalMean:   finding.HistoricalMean,
		DeviationPercent: finding.DeviationPercent,
		Message:          message,
		Status:           QueryStatusPending,
		CreatedBy:        userID,
	}

	if err := s.db.Create(query).Error; err != nil {
		return nil, fmt.Errorf("failed to create anomaly query: %w", err)
	}

	if s.notifier != nil {
		go s.notifyQueryRaised(query)
	}

	return query, nil
}

// Respond records a branch's answer to a pending query. The status write is
// a compare-and-set; a query is answered exactly once.
func (s *Service) Respond(queryID, userID uint, req *RespondRequest) (*Query, error) {
	if !s.gate.Enabled(license.FeatureQuerySystem) {
		return nil, ErrQuerySystemDisabled
	}

	now := time.Now().UTC()

	res := s.db.Model(&Query{}).
		Where("id = ? AND status = ?", queryID, QueryStatusPending).
		Updates(map[string]interface{}{
			"status":       QueryStatusResponded,
			"responded_by": userID,
			"responded_at": now,
			"response":     req.Response,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to respond to anomaly query: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var existing Query
		if err := s.db.Where("id = ?", queryID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrQueryNotFound
			}
			return nil, fmt.Errorf("failed to load anomaly query: %w", err)
		}
		return nil, ErrQueryAlreadyResponded
	}

	query, err := s.GetQuery(queryID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		go s.notifier.Notify(query.CreatedBy, EventQueryResponded,
			fmt.Sprintf("Query %s answered", query.QueryNumber),
			fmt.Sprintf("%s: %s", query.ProductName, req.Response),
			map[string]interface{}{
				"query_id":   query.ID,
				"request_id": query.RequestID,
			})
	}

	return query, nil
}

// GetQuery retrieves a single anomaly query by ID
func (s *Service) GetQuery(id uint) (*Query, error) {
	var query Query
	if err := s.db.Where("id = ?", id).First(&query).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueryNotFound
		}
		return nil, fmt.Errorf("failed to retrieve anomaly query: %w", err)
	}
	return &query, nil
}

// ListQueries retrieves a page of anomaly queries, newest first
func (s *Service) ListQueries(req *ListQueriesRequest) (*ListQueriesResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Query{})
	if req.BranchID != 0 {
		query = query.Where("branch_id = ?", req.BranchID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count anomaly queries: %w", err)
	}

	var queries []Query
	err := query.Order("created_at DESC").
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Find(&queries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve anomaly queries: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ListQueriesResponse{
		Queries: queries,
		Pagination: request.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// notifyQueryRaised alerts the requesting branch that an answer is needed.
// The request's submitter is the recipient; branch-wide fanout is the
// notifier's concern.
func (s *Service) notifyQueryRaised(query *Query) {
	var stockRequest request.StockRequest
	if err := s.db.Where("id = ?", query.RequestID).First(&stockRequest).Error; err != nil {
		return
	}

	s.notifier.Notify(stockRequest.RequestedBy, EventQueryRaised,
		fmt.Sprintf("Query %s needs a response", query.QueryNumber),
		query.Message,
		map[string]interface{}{
			"query_id":   query.ID,
			"request_id": query.RequestID,
			"severity":   query.Severity,
		})
}

func reportCacheKey(requestID uint) string {
	return fmt.Sprintf("anomaly:report:%d", requestID)
}
