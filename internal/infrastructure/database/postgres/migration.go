// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/branchops-backend/internal/domain/anomaly"
	"github.com/your-org/branchops-backend/internal/domain/branch"
	"github.com/your-org/branchops-backend/internal/domain/inventory"
	"github.com/your-org/branchops-backend/internal/domain/notification"
	"github.com/your-org/branchops-backend/internal/domain/request"
	"github.com/your-org/branchops-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// Base tables
		&branch.Branch{},
		&user.User{},
		&inventory.Product{},

		// Request workflow
		&request.StockRequest{},
		&request.RequestItem{},

		// Ledger and anomaly tables
		&inventory.StockMovement{},
		&anomaly.Query{},

		// Delivery
		&notification.Notification{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Request lookups by branch and state
		"CREATE INDEX IF NOT EXISTS idx_stock_requests_branch_status ON stock_requests(branch_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_stock_requests_created_at ON stock_requests(created_at DESC)",

		// History window scans for anomaly detection
		"CREATE INDEX IF NOT EXISTS idx_request_items_product_request ON stock_request_items(product_id, request_id)",

		// Movement ledger reads
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_reference ON stock_movements(reference_type, reference_id)",

		// Query inbox per branch
		"CREATE INDEX IF NOT EXISTS idx_anomaly_queries_branch_status ON anomaly_queries(branch_id, status)",

		// Unread notification counts
		"CREATE INDEX IF NOT EXISTS idx_notifications_recipient_read ON notifications(recipient_id, is_read)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// SeedData seeds an initial admin account and warehouse catalog entries for
// development environments
func (m *Migration) SeedData() error {
	var count int64
	m.db.Model(&user.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	log.Println("Seeding initial data...")

	hashed, err := bcrypt.GenerateFromPassword([]byte("Admin2024x"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	admin := &user.User{
		Email:     "admin@branchops.local",
		Password:  string(hashed),
		FirstName: "System",
		LastName:  "Admin",
		Role:      user.RoleAdmin,
		IsActive:  true,
	}
	if err := m.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	mainBranch := &branch.Branch{
		Name:     "Main Branch",
		Code:     "MAIN",
		City:     "Head Office",
		IsActive: true,
	}
	if err := m.db.Create(mainBranch).Error; err != nil {
		return fmt.Errorf("failed to seed branch: %w", err)
	}

	log.Println("Seed data created")
	return nil
}
