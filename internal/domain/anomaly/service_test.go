// internal/domain/anomaly/service_test.go
package anomaly

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/pkg/license"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockService creates a Service backed by a mocked SQL connection. The
// feature gate is fully switched off so the tests double as proof that
// detection itself is capability-agnostic; gating happens at the surface.
func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Anomaly: config.AnomalyConfig{
			Threshold:      0.10,
			WindowDays:     90,
			MinHistory:     3,
			ReportCacheTTL: 10 * time.Minute,
		},
	}

	return NewService(gormDB, cfg, nil, license.NewConfigGate(cfg), nil), mock, mockDB
}

func requestRows(id, branchID uint) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "request_number", "branch_id", "requested_by", "status",
		"created_at", "updated_at", "deleted_at",
	}).AddRow(id, "SR-20260830-AAAAAAAA", branchID, 3, "pending", now, now, nil)
}

func itemRows(requestID, productID uint, requested int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "request_id", "position", "product_id", "product_name",
		"requested_quantity", "created_at", "updated_at",
	}).AddRow(1, requestID, 0, productID, "Copy Paper A4", requested, now, now)
}

func expectEvaluation(mock sqlmock.Sqlmock, priorRequests int, samples []int) {
	mock.ExpectQuery(`SELECT \* FROM "stock_requests" WHERE id = \$1`).
		WillReturnRows(requestRows(1, 2))
	mock.ExpectQuery(`SELECT \* FROM "stock_request_items" WHERE "stock_request_items"\."request_id" = \$1`).
		WillReturnRows(itemRows(1, 10, 100))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_requests" WHERE branch_id = \$1 AND id <> \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(priorRequests))

	historyRows := sqlmock.NewRows([]string{"product_id", "requested_quantity"})
	for _, s := range samples {
		historyRows.AddRow(10, s)
	}
	mock.ExpectQuery(`SELECT stock_request_items\.product_id, stock_request_items\.requested_quantity FROM "stock_request_items"`).
		WillReturnRows(historyRows)
}

func TestGetReport(t *testing.T) {
	t.Run("evaluates with the feature gate switched off", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		expectEvaluation(mock, 3, []int{20, 20, 20})

		report, err := svc.GetReport(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, report.Findings, 1)
		assert.Equal(t, uint(10), report.Findings[0].ProductID)
		assert.Equal(t, 90, report.WindowDays)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("history floor is the branch's prior request count", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		// Three prior requests at the branch; the product itself only
		// appears in two of them. The deviation is still flagged.
		expectEvaluation(mock, 3, []int{20, 20})

		report, err := svc.GetReport(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, report.Findings, 1)
		assert.InDelta(t, 400.0, report.Findings[0].DeviationPercent, 0.001)
		assert.Equal(t, 2, report.Findings[0].SampleSize)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("branch below the floor yields an empty report", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		expectEvaluation(mock, 2, []int{20, 20})

		report, err := svc.GetReport(context.Background(), 1)

		require.NoError(t, err)
		assert.False(t, report.HasAnomalies())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
