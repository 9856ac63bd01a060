// internal/domain/request/review_tx_test.go
package request

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/inventory"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockService creates a Service backed by a mocked SQL connection
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

	cfg := &config.Config{}
	inventorySvc := inventory.NewService(gormDB, cfg)

	return NewService(gormDB, cfg, inventorySvc, nil), mock, mockDB
}

func pendingRequestRows(id uint) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "request_number", "branch_id", "requested_by", "status",
		"reviewed_by", "reviewed_at", "delivery_date", "general_remarks",
		"created_at", "updated_at", "deleted_at",
	}).AddRow(id, "SR-20260830-AAAAAAAA", 2, 3, "pending", nil, nil, nil, "", now, now, nil)
}

func singleItemRows(requestID, productID uint, requested int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "request_id", "position", "product_id", "product_name",
		"requested_quantity", "current_stock", "availability", "approved_quantity",
		"item_remarks", "restock_date", "can_fulfill_after_restock",
		"created_at", "updated_at",
	}).AddRow(1, requestID, 0, productID, "Copy Paper A4", requested, 2, "", 0, "", nil, false, now, now)
}

func expectPendingRequestLoad(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT \* FROM "stock_requests" WHERE id = \$1`).
		WillReturnRows(pendingRequestRows(1))
	mock.ExpectQuery(`SELECT \* FROM "stock_request_items" WHERE "stock_request_items"\."request_id" = \$1`).
		WillReturnRows(singleItemRows(1, 10, 5))
}

func TestReviewTransaction(t *testing.T) {
	input := &ReviewInput{
		Decisions: []ItemDecision{
			{ProductID: 10, Availability: AvailabilityAvailable},
		},
		DeliveryDate: date("2026-09-05"),
	}

	t.Run("lost status race rolls back with ErrAlreadyReviewed", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		expectPendingRequestLoad(mock)

		// A concurrent review already moved the request out of pending,
		// so the compare-and-set matches no row
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "stock_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		reviewed, err := svc.Review(1, 7, input)

		assert.Nil(t, reviewed)
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed deduction rolls back without freezing items", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		expectPendingRequestLoad(mock)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "stock_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Stock does not cover the approved quantity; the conditional
		// decrement matches no row and the re-read reveals the shortfall
		mock.ExpectExec(`UPDATE "products" SET "quantity"=quantity - \$1 WHERE id = \$2 AND quantity >= \$3`).
			WithArgs(5, 10, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "quantity"}).
				AddRow(10, "Copy Paper A4", 2))
		mock.ExpectRollback()

		reviewed, err := svc.Review(1, 7, input)

		assert.Nil(t, reviewed)

		var insufficient *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, uint(10), insufficient.ProductID)
		assert.Equal(t, 2, insufficient.Available)
		assert.Equal(t, 5, insufficient.Requested)

		// No movement insert, item save or commit may follow the rollback
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
