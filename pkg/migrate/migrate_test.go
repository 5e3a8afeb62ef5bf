package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestShippedMigrationsAreValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"version bigint NOT NULL DEFAULT 1",
		"CHECK ((status = 'delivered') = (delivered_at IS NOT NULL))",
		"CHECK ((status = 'delivered') = (settled_total_cents IS NOT NULL))",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationGuardsStock(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")
	for _, sub := range []string{"CHECK (stock_qty >= 0)", "DROP TABLE IF EXISTS products"} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Courier Zones!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_courier_zones.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected sanitized empty name to fail")
	}
}

func TestCreateSQLMigrationOrdersAfterNewestVersion(t *testing.T) {
	dir := t.TempDir()
	future := "20991231235959_later.sql"
	if err := os.WriteFile(filepath.Join(dir, future), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	path, err := createSQLMigration(dir, "next", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("createSQLMigration: %v", err)
	}
	if filepath.Base(path) != "21000101000000_next.sql" {
		t.Fatalf("expected version after newest migration got %s", filepath.Base(path))
	}
}

func TestValidateDirRejectsDownBeforeUp(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x (id int);\n"
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_swapped.sql"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected ordering error")
	}
}

func TestApplySQLiteSchemaIsIdempotent(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx := context.Background()
	if err := ApplySQLiteSchema(ctx, conn); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := ApplySQLiteSchema(ctx, conn); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	for _, table := range []string{"orders", "order_line_items", "products", "merchants", "couriers", "notifications", "ledger_events"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file found for %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
