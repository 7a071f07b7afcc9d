// Package ledger holds the two scalar balances of a session.
package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientPrimary   = errors.New("insufficient primary currency")
	ErrInsufficientSecondary = errors.New("insufficient secondary currency")
	ErrNegativeAmount        = errors.New("amount must be >= 0")
)

// Ledger is not safe for concurrent use.
type Ledger struct {
	Primary   decimal.Decimal // fractional, e.g. coins
	Secondary int64           // integral, e.g. stars
}

func New(primary decimal.Decimal, secondary int64) *Ledger {
	return &Ledger{Primary: primary, Secondary: secondary}
}

func (l *Ledger) CanSpendPrimary(amount decimal.Decimal) bool {
	return l.Primary.GreaterThanOrEqual(amount)
}

// SpendPrimary debits amount, or returns ErrInsufficientPrimary and leaves
// the balance unchanged.
func (l *Ledger) SpendPrimary(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !l.CanSpendPrimary(amount) {
		return ErrInsufficientPrimary
	}
	l.Primary = l.Primary.Sub(amount)
	return nil
}

func (l *Ledger) CreditPrimary(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	l.Primary = l.Primary.Add(amount)
	return nil
}

func (l *Ledger) CanSpendSecondary(amount int64) bool {
	return l.Secondary >= amount
}

func (l *Ledger) SpendSecondary(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if !l.CanSpendSecondary(amount) {
		return ErrInsufficientSecondary
	}
	l.Secondary -= amount
	return nil
}

func (l *Ledger) CreditSecondary(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	l.Secondary += amount
	return nil
}
