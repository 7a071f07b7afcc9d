package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

// BuyBuff purchases buff id with the secondary currency. Only one buff can
// be held at a time.
func (s *Session) BuyBuff(id string) (catalog.Buff, error) {
	b, ok := s.variant.Buff(id)
	if !ok {
		return catalog.Buff{}, ErrUnknownBuff
	}
	now := s.now()
	if _, active := s.activeBuff(now); active {
		return catalog.Buff{}, ErrBuffActive
	}
	if err := s.ledger.SpendSecondary(b.Cost); err != nil {
		return catalog.Buff{}, err
	}
	s.buff = &ActiveBuff{ID: b.ID, ExpiresAt: now.Add(b.Duration)}
	s.syncTimers(now)
	s.save()
	s.log.Info("buff bought", zap.String("buff", b.ID), zap.Time("expires", s.buff.ExpiresAt))
	return b, nil
}

// activeBuff resolves the held buff if it is still running at now.
func (s *Session) activeBuff(now time.Time) (catalog.Buff, bool) {
	if s.buff == nil || !now.Before(s.buff.ExpiresAt) {
		return catalog.Buff{}, false
	}
	return s.variant.Buff(s.buff.ID)
}

func (s *Session) expireBuff(at time.Time) {
	if s.buff == nil || at.Before(s.buff.ExpiresAt) {
		return
	}
	s.log.Info("buff expired", zap.String("buff", s.buff.ID))
	s.buff = nil
	s.syncTimers(at)
	s.save()
}
