package billing

import (
	"context"
	"testing"
	"time"

	"github.com/dhiyug/milkdiary-backend/pkg/db/models"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"github.com/dhiyug/milkdiary-backend/pkg/timeutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingTestDB(t *testing.T) (*gorm.DB, models.Customer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  created_at DATETIME
);`
	milkTypes := `
CREATE TABLE IF NOT EXISTS milk_types (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  default_rate NUMERIC NOT NULL
);`
	transactions := `
CREATE TABLE IF NOT EXISTS transactions (
  id INTEGER PRIMARY KEY,
  customer_id INTEGER NOT NULL,
  milk_type_id INTEGER NOT NULL,
  occurred_at DATETIME NOT NULL,
  session TEXT NOT NULL,
  qty_liters NUMERIC NOT NULL,
  fat_value NUMERIC,
  rate_applied NUMERIC NOT NULL,
  total_amount NUMERIC NOT NULL,
  txn_type TEXT NOT NULL
);`
	bills := `
CREATE TABLE IF NOT EXISTS bills (
  id INTEGER PRIMARY KEY,
  customer_id INTEGER NOT NULL,
  period_start DATETIME NOT NULL,
  period_end DATETIME NOT NULL,
  total_amount NUMERIC NOT NULL,
  generated_at DATETIME NOT NULL,
  is_paid BOOLEAN NOT NULL DEFAULT 0,
  UNIQUE (customer_id, period_start, period_end)
);`

	for _, ddl := range []string{customers, milkTypes, transactions, bills} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	for _, table := range []string{"bills", "transactions", "milk_types", "customers"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	customer := models.Customer{Name: "Ramesh"}
	require.NoError(t, db.Create(&customer).Error)

	return db, customer
}

func storedTestBill(customerID uint, startDay, endDay string) models.Bill {
	parse := func(day string) time.Time {
		parsed, err := time.Parse(timeutil.DateLayout, day)
		if err != nil {
			panic(err)
		}
		return parsed.UTC()
	}
	return models.Bill{
		CustomerID:  customerID,
		PeriodStart: parse(startDay),
		PeriodEnd:   parse(endDay),
		TotalAmount: decimal.RequireFromString("80.00"),
		GeneratedAt: time.Date(2024, 1, 22, 6, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryFindWindowMatchesExactBoundsOnly(t *testing.T) {
	db, customer := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bill := storedTestBill(customer.ID, "2024-01-15", "2024-01-21")
	require.NoError(t, repo.Create(ctx, &bill))

	found, err := repo.FindWindow(ctx, customer.ID, bill.PeriodStart, bill.PeriodEnd)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, found.ID)

	// A sub-range of an existing window is a different bill.
	narrower := storedTestBill(customer.ID, "2024-01-16", "2024-01-21")
	_, err = repo.FindWindow(ctx, customer.ID, narrower.PeriodStart, narrower.PeriodEnd)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateTotalsRewritesInPlace(t *testing.T) {
	db, customer := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bill := storedTestBill(customer.ID, "2024-01-15", "2024-01-21")
	require.NoError(t, repo.Create(ctx, &bill))

	regenerated := time.Date(2024, 1, 23, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateTotals(ctx, bill.ID, decimal.RequireFromString("120.00"), regenerated))

	reloaded, err := repo.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.RequireFromString("120.00")))
	assert.True(t, reloaded.GeneratedAt.Equal(regenerated))
	assert.Equal(t, "Ramesh", reloaded.Customer.Name)
}

func TestRepositoryListScopesToCustomer(t *testing.T) {
	db, customer := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	other := models.Customer{Name: "Suresh"}
	require.NoError(t, db.Create(&other).Error)

	mine := storedTestBill(customer.ID, "2024-01-15", "2024-01-21")
	require.NoError(t, repo.Create(ctx, &mine))
	theirs := storedTestBill(other.ID, "2024-01-15", "2024-01-21")
	require.NoError(t, repo.Create(ctx, &theirs))

	bills, err := repo.List(ctx, &customer.ID)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, customer.ID, bills[0].CustomerID)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepositoryMarkPaid(t *testing.T) {
	db, customer := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bill := storedTestBill(customer.ID, "2024-01-15", "2024-01-21")
	require.NoError(t, repo.Create(ctx, &bill))
	require.NoError(t, repo.MarkPaid(ctx, bill.ID))

	reloaded, err := repo.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsPaid)
}

func TestRepositoryListWindowTransactionsIsChronological(t *testing.T) {
	db, customer := setupBillingTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	milk := models.MilkType{Name: "Cow", DefaultRate: decimal.RequireFromString("38.50")}
	require.NoError(t, db.Create(&milk).Error)

	for _, day := range []string{"2024-01-16", "2024-01-15"} {
		parsed, err := timeutil.ParseDate(day)
		require.NoError(t, err)
		row := models.Transaction{
			CustomerID:  customer.ID,
			MilkTypeID:  milk.ID,
			OccurredAt:  timeutil.DayStartUTC(parsed),
			Session:     enums.SessionMorning,
			QtyLiters:   decimal.RequireFromString("2.00"),
			RateApplied: decimal.RequireFromString("40.00"),
			TotalAmount: decimal.RequireFromString("80.00"),
			TxnType:     enums.TxnSell,
		}
		require.NoError(t, db.Create(&row).Error)
	}

	from, to := timeutil.WindowUTC(mustLocalDay(t, "2024-01-15"), mustLocalDay(t, "2024-01-16"))
	rows, err := repo.ListWindowTransactions(ctx, customer.ID, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].OccurredAt.Before(rows[1].OccurredAt))
	assert.Equal(t, "Cow", rows[0].MilkType.Name)
}

func mustLocalDay(t *testing.T, day string) time.Time {
	t.Helper()
	parsed, err := timeutil.ParseDate(day)
	require.NoError(t, err)
	return parsed
}
