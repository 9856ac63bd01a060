// internal/domain/inventory/service_test.go
package inventory

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/branchops-backend/internal/config"
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

	return NewService(gormDB, &config.Config{}), mock, mockDB
}

func productRows(id uint, name string, quantity int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "sku", "quantity", "unit", "price", "is_active", "created_at", "updated_at", "deleted_at",
	}).AddRow(id, name, "SKU-1", quantity, "pcs", int64(100), true, now, now, nil)
}

func TestDeductTx(t *testing.T) {
	t.Run("deducts stock when quantity covers the amount", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "products" SET "quantity"=quantity - \$1 WHERE id = \$2 AND quantity >= \$3`).
			WithArgs(5, 1, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnRows(productRows(1, "Copy Paper A4", 15))

		movement, err := svc.DeductTx(svc.db, 1, 5)

		require.NoError(t, err)
		assert.Equal(t, uint(1), movement.ProductID)
		assert.Equal(t, MovementTypeOutbound, movement.MovementType)
		assert.Equal(t, ReasonRequestFulfillment, movement.Reason)
		assert.Equal(t, 5, movement.Quantity)
		assert.Equal(t, 20, movement.PreviousQuantity)
		assert.Equal(t, 15, movement.NewQuantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns InsufficientStockError when stock does not cover", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "products" SET "quantity"=quantity - \$1 WHERE id = \$2 AND quantity >= \$3`).
			WithArgs(10, 1, 10).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnRows(productRows(1, "Copy Paper A4", 3))

		movement, err := svc.DeductTx(svc.db, 1, 10)

		require.Error(t, err)
		assert.Nil(t, movement)

		var insufficient *InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, uint(1), insufficient.ProductID)
		assert.Equal(t, 3, insufficient.Available)
		assert.Equal(t, 10, insufficient.Requested)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrProductNotFound for a missing product", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "products" SET "quantity"=quantity - \$1 WHERE id = \$2 AND quantity >= \$3`).
			WithArgs(5, 99, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnError(gorm.ErrRecordNotFound)

		movement, err := svc.DeductTx(svc.db, 99, 5)

		assert.Nil(t, movement)
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive amounts without touching the database", func(t *testing.T) {
		svc, mock, mockDB := newMockService(t)
		defer mockDB.Close()

		_, err := svc.DeductTx(svc.db, 1, 0)
		require.Error(t, err)

		_, err = svc.DeductTx(svc.db, 1, -3)
		require.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsInsufficientStock(t *testing.T) {
	err := &InsufficientStockError{ProductID: 1, ProductName: "Copy Paper A4", Available: 2, Requested: 5}
	assert.True(t, IsInsufficientStock(err))
	assert.False(t, IsInsufficientStock(ErrProductNotFound))
	assert.Contains(t, err.Error(), "Copy Paper A4")
}
