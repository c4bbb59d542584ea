package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestTransactionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_transactions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"FOREIGN KEY (customer_id) REFERENCES customers(id)",
		"FOREIGN KEY (milk_type_id) REFERENCES milk_types(id)",
		"CHECK (qty_liters >= 0)",
		"CHECK (session IN ('Morning', 'Evening'))",
		"CHECK (txn_type IN ('Sell', 'Purchase'))",
		"idx_transactions_occurred_at",
		"DROP TABLE IF EXISTS transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRateChartMigrationEnforcesUniqueFatPerMilkType(t *testing.T) {
	content := readMigration(t, "*_create_rate_chart_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS rate_chart_entries",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_rate_chart_milk_fat ON rate_chart_entries (milk_type_id, fat_level)",
		"ON DELETE CASCADE",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBillsMigrationEnforcesUniqueWindow(t *testing.T) {
	content := readMigration(t, "*_create_bills.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bills",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_bills_window ON bills (customer_id, period_start, period_end)",
		"CHECK (period_start <= period_end)",
		"is_paid BOOLEAN NOT NULL DEFAULT FALSE",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
