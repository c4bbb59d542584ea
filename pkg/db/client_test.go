package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is not a violation")
	}
	err := errors.New(`duplicate key value violates unique constraint "idx_rate_chart_milk_fat"`)
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected generic duplicate detection")
	}
	if !IsUniqueViolation(err, "idx_rate_chart_milk_fat") {
		t.Fatal("expected named constraint detection")
	}
	if IsUniqueViolation(err, "idx_bills_window") {
		t.Fatal("different constraint should not match")
	}
	sqliteErr := errors.New("UNIQUE constraint failed: rate_chart_entries.milk_type_id")
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("expected sqlite duplicate detection")
	}
}
