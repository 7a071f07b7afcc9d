package session

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
	"github.com/xtding233/gacha-roulette/internal/ledger"
)

// Persisted keys.
const (
	KeyCoins        = "coins"
	KeyStars        = "stars"
	KeyInventory    = "inventory"
	KeyEquipped     = "equippedPets"
	KeyIsAdmin      = "isAdmin"
	KeyActiveBuff   = "activeBuff"
	KeyBuffExpiry   = "buffExpiry"
	KeyCurrentEvent = "currentEvent"
)

type storedEvent struct {
	ID     string `json:"id"`
	EndsAt int64  `json:"endsAt"` // epoch ms
}

// load reads every key; absent or malformed values fall back to defaults.
func (s *Session) load() {
	v := s.variant
	s.ledger = ledger.New(v.StartPrimary, v.StartSecondary)

	if raw, ok := s.get(KeyCoins); ok {
		if d, err := decimal.NewFromString(raw); err == nil {
			s.ledger.Primary = d
		} else {
			s.fallback(KeyCoins, raw, err)
		}
	}
	if raw, ok := s.get(KeyStars); ok {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.ledger.Secondary = n
		} else {
			s.fallback(KeyStars, raw, err)
		}
	}

	s.inventory = s.loadItems(KeyInventory)
	s.equipped = s.loadItems(KeyEquipped)
	s.clampEquipped()

	if raw, ok := s.get(KeyIsAdmin); ok {
		s.admin = raw == "true"
	}

	s.buff = nil
	if id, ok := s.get(KeyActiveBuff); ok && id != "" {
		raw, _ := s.get(KeyBuffExpiry)
		ms, err := strconv.ParseInt(raw, 10, 64)
		switch {
		case err != nil:
			s.fallback(KeyBuffExpiry, raw, err)
		case !hasBuff(v, id):
			s.fallback(KeyActiveBuff, id, ErrUnknownBuff)
		default:
			s.buff = &ActiveBuff{ID: id, ExpiresAt: time.UnixMilli(ms)}
		}
	}

	s.event = nil
	if raw, ok := s.get(KeyCurrentEvent); ok && raw != "" {
		var se storedEvent
		if err := json.Unmarshal([]byte(raw), &se); err != nil {
			s.fallback(KeyCurrentEvent, raw, err)
		} else if se.ID != "" {
			s.event = &ActiveEvent{ID: se.ID}
			if se.EndsAt > 0 {
				s.event.EndsAt = time.UnixMilli(se.EndsAt)
			}
		}
	}
}

// clampEquipped moves any equip-set overflow back to the inventory, e.g.
// after the cap shrank or the store was edited.
func (s *Session) clampEquipped() {
	extra := len(s.equipped) - max(s.variant.EquipCap, 0)
	if extra <= 0 {
		return
	}
	keep := len(s.equipped) - extra
	s.inventory = append(s.inventory, s.equipped[keep:]...)
	s.equipped = append([]catalog.Item(nil), s.equipped[:keep]...)
	s.log.Warn("equip set over cap, moved to inventory", zap.Int("moved", extra))
}

func hasBuff(v *catalog.Variant, id string) bool {
	_, ok := v.Buff(id)
	return ok
}

func (s *Session) loadItems(key string) []catalog.Item {
	raw, ok := s.get(key)
	if !ok || raw == "" {
		return nil
	}
	var items []catalog.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.fallback(key, raw, err)
		return nil
	}
	for i := range items {
		if items[i].InstanceID == "" {
			items[i] = gacha.NewItem(items[i].Entry)
		}
	}
	return items
}

func (s *Session) get(key string) (string, bool) {
	raw, ok, err := s.store.Get(key)
	if err != nil {
		s.log.Warn("state read failed, using default", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return raw, ok
}

func (s *Session) fallback(key, raw string, err error) {
	s.log.Warn("malformed state, using default",
		zap.String("key", key), zap.String("value", raw), zap.Error(err))
}

// save writes the full state. Failures are logged and kept for SaveErr; the
// in-memory state stays authoritative.
func (s *Session) save() {
	var errs []error
	set := func(key, value string) {
		if err := s.store.Set(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	del := func(key string) {
		if err := s.store.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	setJSON := func(key string, v any) {
		b, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, err)
			return
		}
		set(key, string(b))
	}

	set(KeyCoins, s.ledger.Primary.String())
	set(KeyStars, strconv.FormatInt(s.ledger.Secondary, 10))
	setJSON(KeyInventory, nonNil(s.inventory))
	setJSON(KeyEquipped, nonNil(s.equipped))
	if s.admin {
		set(KeyIsAdmin, "true")
	} else {
		del(KeyIsAdmin)
	}
	if s.buff != nil {
		set(KeyActiveBuff, s.buff.ID)
		set(KeyBuffExpiry, strconv.FormatInt(s.buff.ExpiresAt.UnixMilli(), 10))
	} else {
		del(KeyActiveBuff)
		del(KeyBuffExpiry)
	}
	// session-scoped events are redrawn each start and never stored
	if s.event != nil && !s.event.EndsAt.IsZero() {
		setJSON(KeyCurrentEvent, storedEvent{ID: s.event.ID, EndsAt: s.event.EndsAt.UnixMilli()})
	} else {
		del(KeyCurrentEvent)
	}

	s.saveErr = errors.Join(errs...)
	if s.saveErr != nil {
		s.log.Error("state save failed", zap.Error(s.saveErr))
	}
}

func nonNil(items []catalog.Item) []catalog.Item {
	if items == nil {
		return []catalog.Item{}
	}
	return items
}
