package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for SQLite, which is used for local
// development and the repository tests. Enum columns become text and timestamps
// are declared as datetime so the driver parses them back into time.Time.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS merchants (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		balance_cents INTEGER NOT NULL DEFAULT 0,
		total_earned_cents INTEGER NOT NULL DEFAULT 0,
		base_fee_cents INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS couriers (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		base_fee_cents INTEGER NOT NULL DEFAULT 0,
		pending_earnings_cents INTEGER NOT NULL DEFAULT 0,
		pending_cod_cents INTEGER NOT NULL DEFAULT 0,
		total_deliveries INTEGER NOT NULL DEFAULT 0,
		successful_deliveries INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		merchant_id TEXT NOT NULL,
		sku TEXT NOT NULL,
		name TEXT NOT NULL,
		stock_qty INTEGER NOT NULL DEFAULT 0 CHECK (stock_qty >= 0),
		delivered_count INTEGER NOT NULL DEFAULT 0,
		low_stock_threshold INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL DEFAULT '',
		customer_address TEXT NOT NULL DEFAULT '',
		city_id TEXT,
		total_cents INTEGER NOT NULL,
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		merchant_id TEXT NOT NULL,
		courier_id TEXT,
		delivered_at DATETIME,
		delivery_date DATETIME,
		previous_delivery_date DATETIME,
		reschedule_reason TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		settled_total_cents INTEGER,
		settled_payment_method TEXT,
		settled_merchant_fee_cents INTEGER,
		settled_courier_id TEXT,
		settled_courier_fee_cents INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS order_line_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		qty INTEGER NOT NULL,
		unit_price_cents INTEGER NOT NULL DEFAULT 0,
		is_free BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		recipient_user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		order_id TEXT,
		read_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_events (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		merchant_id TEXT NOT NULL,
		courier_id TEXT,
		actor_user_id TEXT,
		type TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		metadata BLOB,
		created_at DATETIME
	)`,
}

// ApplySQLiteSchema creates every table on a SQLite connection.
func ApplySQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if name := conn.Dialector.Name(); name != "sqlite" {
		return fmt.Errorf("sqlite schema cannot be applied to %s", name)
	}
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
