package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSpendPrimaryExactBalance(t *testing.T) {
	l := New(decimal.NewFromInt(10), 0)
	if err := l.SpendPrimary(decimal.NewFromInt(10)); err != nil {
		t.Fatal(err)
	}
	if !l.Primary.IsZero() {
		t.Fatalf("balance=%s want 0", l.Primary)
	}
}

func TestSpendPrimaryInsufficientLeavesBalance(t *testing.T) {
	l := New(decimal.RequireFromString("9.99"), 0)
	if err := l.SpendPrimary(decimal.NewFromInt(10)); err != ErrInsufficientPrimary {
		t.Fatalf("want ErrInsufficientPrimary, got %v", err)
	}
	if !l.Primary.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("balance changed to %s", l.Primary)
	}
}

func TestFractionalCreditIsExact(t *testing.T) {
	l := New(decimal.Zero, 0)
	tenth := decimal.RequireFromString("0.1")
	for i := 0; i < 30; i++ {
		_ = l.CreditPrimary(tenth)
	}
	if !l.Primary.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("30 x 0.1 = %s", l.Primary)
	}
}

func TestSecondary(t *testing.T) {
	l := New(decimal.Zero, 5)
	if err := l.SpendSecondary(6); err != ErrInsufficientSecondary {
		t.Fatalf("want ErrInsufficientSecondary, got %v", err)
	}
	if err := l.SpendSecondary(5); err != nil || l.Secondary != 0 {
		t.Fatalf("spend 5: err=%v balance=%d", err, l.Secondary)
	}
	if err := l.CreditSecondary(-1); err != ErrNegativeAmount {
		t.Fatalf("negative credit should fail, got %v", err)
	}
	if err := l.SpendPrimary(decimal.NewFromInt(-1)); err != ErrNegativeAmount {
		t.Fatalf("negative spend should fail, got %v", err)
	}
}
