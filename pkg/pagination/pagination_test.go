package pagination

import (
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{name: "zero falls back to default", in: 0, want: DefaultLimit},
		{name: "negative falls back to default", in: -3, want: DefaultLimit},
		{name: "in range passes through", in: 120, want: 120},
		{name: "above max is capped", in: 5000, want: MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.in); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeLimitMax(t *testing.T) {
	if got := NormalizeLimitMax(0, 200); got != DefaultLimit {
		t.Fatalf("expected default %d, got %d", DefaultLimit, got)
	}
	if got := NormalizeLimitMax(250, 200); got != 200 {
		t.Fatalf("expected cap 200, got %d", got)
	}
	if got := NormalizeLimitMax(10, 0); got != 10 {
		t.Fatalf("expected 10 with fallback cap, got %d", got)
	}
}

func TestLimitWithBuffer(t *testing.T) {
	if got := LimitWithBuffer(10, 200); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
	if got := LimitWithBuffer(250, 200); got != 201 {
		t.Fatalf("buffer must sit above the cap, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	occurredAt := time.Date(2024, 1, 14, 18, 30, 0, 0, time.UTC)
	encoded := EncodeCursor(Cursor{OccurredAt: occurredAt, ID: 95})

	cursor, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !cursor.OccurredAt.Equal(occurredAt) {
		t.Fatalf("expected occurred_at %v, got %v", occurredAt, cursor.OccurredAt)
	}
	if cursor.ID != 95 {
		t.Fatalf("expected id 95, got %d", cursor.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cursor != nil {
		t.Fatal("expected nil cursor for blank input")
	}
}

func TestParseCursorInvalid(t *testing.T) {
	cases := []string{
		"not-base64!!",
		"bm8tcGlwZQ",           // decodes without the separator
		"MjAyNHxub3QtYS1udW0=", // bad timestamp and id
	}
	for _, value := range cases {
		if _, err := ParseCursor(value); err == nil {
			t.Errorf("expected error for cursor %q", value)
		}
	}
}
