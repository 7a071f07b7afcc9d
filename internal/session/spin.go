package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
	"github.com/xtding233/gacha-roulette/internal/reel"
)

// SpinResult is a committed roulette outcome plus the cosmetic strip that
// lands on it.
type SpinResult struct {
	Item catalog.Item
	Reel reel.Reel
}

// Spin pays the spin cost and draws one item into the inventory.
func (s *Session) Spin() (SpinResult, error) {
	now := s.now()
	cost := s.variant.SpinCost
	if !s.ledger.CanSpendPrimary(cost) {
		return SpinResult{}, ErrInsufficientPrimary
	}
	mods := s.modifiers(now)
	item, err := gacha.DrawEntry(s.variant, s.rng, mods...)
	if err != nil {
		return SpinResult{}, err
	}
	if err := s.ledger.SpendPrimary(cost); err != nil {
		return SpinResult{}, err
	}
	s.inventory = append(s.inventory, item)
	s.save()

	// the outcome is fixed; everything below is decoration
	strip := reel.Build(item, func() catalog.Item {
		filler, err := gacha.DrawEntry(s.variant, s.rng, mods...)
		if err != nil {
			return item
		}
		return filler
	}, s.rng, reel.FromCatalog(s.variant.Reel))

	s.log.Info("spin",
		zap.String("entry", item.ID),
		zap.String("rarity", string(item.Rarity)),
		zap.String("instance", item.InstanceID),
		zap.String("balance", s.ledger.Primary.String()))
	return SpinResult{Item: item, Reel: strip}, nil
}

// OpenLuckyBlock pays for block id and draws from its drop table.
func (s *Session) OpenLuckyBlock(id string) (catalog.Item, error) {
	block, ok := s.variant.LuckyBlock(id)
	if !ok {
		return catalog.Item{}, ErrUnknownLuckyBlock
	}
	if !s.ledger.CanSpendPrimary(block.Cost) {
		return catalog.Item{}, ErrInsufficientPrimary
	}
	drop, err := gacha.DrawDrop(block.Drops, s.rng)
	if err != nil {
		return catalog.Item{}, err
	}
	entry, ok := s.variant.Entry(drop.EntryID)
	if !ok {
		return catalog.Item{}, ErrItemNotFound
	}
	if err := s.ledger.SpendPrimary(block.Cost); err != nil {
		return catalog.Item{}, err
	}
	item := gacha.NewItem(entry)
	s.inventory = append(s.inventory, item)
	s.save()
	s.log.Info("lucky block opened",
		zap.String("block", block.ID),
		zap.String("entry", item.ID),
		zap.String("rarity", string(item.Rarity)))
	return item, nil
}

// Odds is one rarity's display line.
type Odds struct {
	Rarity    catalog.Rarity
	Name      string
	Base      float64 // percent
	Effective float64 // percent actually drawn under current modifiers
}

// Odds reports the per-rarity chances the next spin uses.
func (s *Session) Odds() []Odds {
	shares, err := gacha.ExpectedShares(s.variant.Weights, s.variant.DrawMode, s.modifiers(s.now())...)
	if err != nil {
		return nil
	}
	out := make([]Odds, len(s.variant.Weights))
	for i, w := range s.variant.Weights {
		out[i] = Odds{Rarity: w.Rarity, Name: s.variant.Weights.DisplayName(w.Rarity), Base: w.Percent, Effective: shares[i] * 100}
	}
	return out
}

// modifiers collects the odds changes in effect at now.
func (s *Session) modifiers(now time.Time) []gacha.Modifier {
	var mods []gacha.Modifier
	if ev, ok := s.activeEvent(now); ok {
		mods = append(mods, gacha.Modifier{Multiplier: ev.Multiplier, Boosted: ev.Boosted})
	}
	if b, ok := s.activeBuff(now); ok && b.Kind == catalog.BuffLuck {
		mods = append(mods, gacha.Modifier{Multiplier: b.Multiplier, Boosted: b.Boosted})
	}
	return mods
}
