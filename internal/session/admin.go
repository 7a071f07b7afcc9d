package session

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UnlockAdmin compares code against the variant's fixed admin code. This is
// a debug switch, not access control.
func (s *Session) UnlockAdmin(code string) error {
	if code != s.variant.AdminCode {
		return ErrWrongAdminCode
	}
	s.admin = true
	s.save()
	s.log.Info("admin unlocked")
	return nil
}

// GrantPrimary credits one of the variant's offered primary grant amounts.
func (s *Session) GrantPrimary(amount decimal.Decimal) error {
	if !s.admin {
		return ErrNotAdmin
	}
	allowed := false
	for _, g := range s.variant.PrimaryGrants {
		if g.Equal(amount) {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrGrantNotAllowed
	}
	if err := s.ledger.CreditPrimary(amount); err != nil {
		return err
	}
	s.save()
	s.log.Info("admin grant", zap.String("currency", s.variant.PrimaryName), zap.String("amount", amount.String()))
	return nil
}

// GrantSecondary credits one of the variant's offered secondary grant amounts.
func (s *Session) GrantSecondary(amount int64) error {
	if !s.admin {
		return ErrNotAdmin
	}
	allowed := false
	for _, g := range s.variant.SecondaryGrants {
		if g == amount {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrGrantNotAllowed
	}
	if err := s.ledger.CreditSecondary(amount); err != nil {
		return err
	}
	s.save()
	s.log.Info("admin grant", zap.String("currency", s.variant.SecondaryName), zap.Int64("amount", amount))
	return nil
}

// Reset restores starting balances and empties inventory and equip set.
// The admin flag, buff and event are kept.
func (s *Session) Reset() error {
	if !s.admin {
		return ErrNotAdmin
	}
	s.ledger.Primary = s.variant.StartPrimary
	s.ledger.Secondary = s.variant.StartSecondary
	s.inventory = nil
	s.equipped = nil
	s.syncTimers(s.now())
	s.save()
	s.log.Info("progress reset")
	return nil
}
