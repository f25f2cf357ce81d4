package postgres

import (
	"database/sql"
	"errors"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches no rows", func(t *testing.T) {
		if !isNotFound(sql.ErrNoRows) {
			t.Fatalf("expected true for sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(errors.New("pq: relation profiles does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestOptionalString(t *testing.T) {
	t.Run("nil for blank", func(t *testing.T) {
		if optionalString("   ") != nil {
			t.Fatalf("expected nil for blank value")
		}
	})

	t.Run("trims value", func(t *testing.T) {
		got := optionalString(" Jakarta ")
		if got == nil || *got != "Jakarta" {
			t.Fatalf("unexpected value: %v", got)
		}
	})
}
