// internal/domain/anomaly/entity.go
package anomaly

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type classifies the direction of a deviation
type Type string

const (
	TypeHigh Type = "high" // observed quantity above the historical mean
	TypeLow  Type = "low"  // observed quantity below the historical mean
)

// Severity grades how far the observation sits from the baseline
type Severity string

const (
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// QueryStatus represents the lifecycle of an anomaly query
type QueryStatus string

const (
	QueryStatusPending   QueryStatus = "pending"
	QueryStatusResponded QueryStatus = "responded"
)

// Query represents a question raised to a branch about an anomalous
// requested quantity. A query is answered exactly once.
type Query struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	QueryNumber string `gorm:"uniqueIndex;not null;size:50" json:"query_number"`
	RequestID   uint   `gorm:"not null;index" json:"request_id"`
	BranchID    uint   `gorm:"not null;index" json:"branch_id"`
	ProductID   uint   `gorm:"not null;index" json:"product_id"`
	ProductName string `gorm:"size:255" json:"product_name"`

	// Snapshot of the finding that triggered the query
	Type             Type     `gorm:"size:10;not null" json:"type"`
	Severity         Severity `gorm:"size:20;not null" json:"severity"`
	ObservedQuantity int      `gorm:"not null" json:"observed_quantity"`
	HistoricalMean   float64  `json:"historical_mean"`
	DeviationPercent float64  `json:"deviation_percent"`
	Message          string   `gorm:"type:text" json:"message"`

	Status    QueryStatus `gorm:"not null;default:'pending';index" json:"status"`
	CreatedBy uint        `gorm:"not null" json:"created_by"`

	// Response metadata, set exactly once
	RespondedBy *uint      `json:"responded_by"`
	RespondedAt *time.Time `json:"responded_at"`
	Response    string     `gorm:"type:text" json:"response"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Query) TableName() string {
	return "anomaly_queries"
}

// GenerateQueryNumber generates a unique human-readable query number.
// Format: AQ-YYYYMMDD-XXXXXXXX
func GenerateQueryNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("AQ-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// IsResponded checks if the query has been answered
func (q *Query) IsResponded() bool {
	return q.Status == QueryStatusResponded
}

// Finding is one detected deviation within a report. Findings are derived,
// never stored; raising one as a Query is a separate, explicit step.
type Finding struct {
	ProductID        uint     `json:"product_id"`
	ProductName      string   `json:"product_name"`
	Type             Type     `json:"type"`
	Severity         Severity `json:"severity"`
	ObservedQuantity int      `json:"observed_quantity"`
	HistoricalMean   float64  `json:"historical_mean"`
	StdDev           float64  `json:"std_dev"`
	DeviationPercent float64  `json:"deviation_percent"`
	SampleSize       int      `json:"sample_size"`
}

// Message renders the finding as a sentence suitable for a query body
func (f *Finding) Message() string {
	direction := "above"
	if f.Type == TypeLow {
		direction = "below"
	}
	return fmt.Sprintf("%s: requested %d is %.1f%% %s the historical mean of %.1f (%d prior requests)",
		f.ProductName, f.ObservedQuantity, f.DeviationPercent, direction, f.HistoricalMean, f.SampleSize)
}

// Report is the anomaly evaluation result for one stock request
type Report struct {
	RequestID     uint      `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	BranchID      uint      `json:"branch_id"`
	WindowDays    int       `json:"window_days"`
	Threshold     float64   `json:"threshold"`
	GeneratedAt   time.Time `json:"generated_at"`
	Findings      []Finding `json:"findings"`
}

// HasAnomalies reports whether any item deviated beyond the threshold
func (r *Report) HasAnomalies() bool {
	return len(r.Findings) > 0
}
