package session

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

// Sell removes an inventory item and credits its sale value in the
// secondary currency, scaled by an active sale buff and truncated.
func (s *Session) Sell(instanceID string) (int64, error) {
	i := indexOf(s.inventory, instanceID)
	if i < 0 {
		return 0, ErrItemNotFound
	}
	item := s.inventory[i]
	value := s.saleValue(item, s.now())
	if err := s.ledger.CreditSecondary(value); err != nil {
		return 0, err
	}
	s.inventory = remove(s.inventory, i)
	s.save()
	s.log.Info("sold", zap.String("instance", instanceID), zap.Int64("value", value))
	return value, nil
}

func (s *Session) saleValue(item catalog.Item, now time.Time) int64 {
	value := item.SecondaryValue
	if b, ok := s.activeBuff(now); ok && b.Kind == catalog.BuffSale {
		value = decimal.NewFromInt(value).Mul(decimal.NewFromFloat(b.Multiplier)).Truncate(0).IntPart()
	}
	return value
}

// Equip moves an inventory item into the equip set.
func (s *Session) Equip(instanceID string) error {
	if s.variant.EquipCap <= 0 {
		return ErrEquipDisabled
	}
	i := indexOf(s.inventory, instanceID)
	if i < 0 {
		return ErrItemNotFound
	}
	if len(s.equipped) >= s.variant.EquipCap {
		return ErrEquipFull
	}
	item := s.inventory[i]
	s.inventory = remove(s.inventory, i)
	s.equipped = append(s.equipped, item)
	now := s.now()
	s.syncTimers(now)
	s.save()
	s.log.Info("equipped", zap.String("instance", instanceID), zap.String("rate", s.rate.String()))
	return nil
}

// Unequip moves an equipped item back to the inventory.
func (s *Session) Unequip(instanceID string) error {
	i := indexOf(s.equipped, instanceID)
	if i < 0 {
		return ErrItemNotFound
	}
	item := s.equipped[i]
	s.equipped = remove(s.equipped, i)
	s.inventory = append(s.inventory, item)
	s.syncTimers(s.now())
	s.save()
	s.log.Info("unequipped", zap.String("instance", instanceID), zap.String("rate", s.rate.String()))
	return nil
}

// accrualRate sums equipped income, scaled by an active speed buff.
func (s *Session) accrualRate(now time.Time) decimal.Decimal {
	rate := decimal.Zero
	for _, it := range s.equipped {
		rate = rate.Add(it.PrimaryValue)
	}
	if b, ok := s.activeBuff(now); ok && b.Kind == catalog.BuffSpeed {
		rate = rate.Mul(decimal.NewFromFloat(b.Multiplier))
	}
	return rate
}

// accrue credits the rate in effect at the tick's own time, so a tick due
// at or after a speed buff's expiry pays the base rate.
func (s *Session) accrue(at time.Time) {
	if len(s.equipped) == 0 {
		return
	}
	_ = s.ledger.CreditPrimary(s.accrualRate(at))
	s.save()
}

func indexOf(items []catalog.Item, instanceID string) int {
	for i, it := range items {
		if it.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func remove(items []catalog.Item, i int) []catalog.Item {
	out := make([]catalog.Item, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
