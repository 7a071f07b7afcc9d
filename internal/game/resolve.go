// resolve.go
package game

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

// Defaults for fields no layer sets.
const (
	defaultEquipCap  = 0
	defaultInterval  = time.Second
	defaultAdminCode = "123"
)

// Resolve turns a validated RawConfig into a catalog.Variant.
func Resolve(cfg RawConfig) *catalog.Variant {
	v := &catalog.Variant{
		Name:            cfg.Name,
		Version:         cfg.Version,
		PrimaryName:     orDefault(cfg.Currencies.Primary, "coins"),
		SecondaryName:   orDefault(cfg.Currencies.Secondary, "stars"),
		SpinCost:        decimalOr(cfg.Economy.SpinCost, 0),
		StartPrimary:    decimalOr(cfg.Economy.StartPrimary, 0),
		EquipCap:        defaultEquipCap,
		AccrualInterval: defaultInterval,
		EventPolicy:     catalog.EventPolicy(orDefault(cfg.Events.Policy, string(catalog.EventsNone))),
		EventTick:       defaultInterval,
		DrawMode:        catalog.DrawMode(orDefault(cfg.Draw.Mode, string(catalog.DrawPercent))),
		AdminCode:       defaultAdminCode,
	}
	if cfg.Economy.StartSecondary != nil {
		v.StartSecondary = *cfg.Economy.StartSecondary
	}
	if cfg.Economy.EquipCap != nil {
		v.EquipCap = *cfg.Economy.EquipCap
	}
	if cfg.Economy.AccrualInterval != nil {
		v.AccrualInterval = *cfg.Economy.AccrualInterval
	}
	if cfg.Events.Tick != nil {
		v.EventTick = *cfg.Events.Tick
	}
	if cfg.Admin.Code != nil {
		v.AdminCode = *cfg.Admin.Code
	}
	for _, g := range cfg.Admin.PrimaryGrants {
		v.PrimaryGrants = append(v.PrimaryGrants, decimal.NewFromFloat(g))
	}
	v.SecondaryGrants = append(v.SecondaryGrants, cfg.Admin.SecondaryGrants...)

	for _, r := range cfg.Draw.Rarities {
		v.Weights = append(v.Weights, catalog.RarityWeight{Rarity: catalog.Rarity(r.ID), Name: r.Name, Percent: r.Weight})
	}
	for _, e := range cfg.Entries {
		v.Entries = append(v.Entries, catalog.Entry{
			ID:             e.ID,
			Name:           e.Name,
			Rarity:         catalog.Rarity(e.Rarity),
			PrimaryValue:   decimal.NewFromFloat(e.Primary),
			SecondaryValue: e.Secondary,
			Emoji:          e.Emoji,
			Pool:           e.Pool,
		})
	}
	for _, ev := range cfg.Events.List {
		v.Events = append(v.Events, catalog.Event{
			ID:         ev.ID,
			Name:       ev.Name,
			Emoji:      ev.Emoji,
			Multiplier: ev.Multiplier,
			Boosted:    rarityList(ev.Boosted),
			Chance:     ev.Chance,
			Duration:   ev.Duration,
		})
	}
	for _, b := range cfg.Buffs {
		v.Buffs = append(v.Buffs, catalog.Buff{
			ID:         b.ID,
			Name:       b.Name,
			Emoji:      b.Emoji,
			Cost:       b.Cost,
			Duration:   b.Duration,
			Kind:       catalog.BuffKind(b.Kind),
			Multiplier: b.Multiplier,
			Boosted:    rarityList(b.Boosted),
		})
	}
	for _, lb := range cfg.LuckyBlocks {
		block := catalog.LuckyBlock{ID: lb.ID, Name: lb.Name, Emoji: lb.Emoji, Cost: decimal.NewFromFloat(lb.Cost)}
		for _, d := range lb.Drops {
			block.Drops = append(block.Drops, catalog.Drop{EntryID: d.Entry, Chance: d.Chance})
		}
		v.LuckyBlocks = append(v.LuckyBlocks, block)
	}

	if cfg.Reel.Length != nil {
		v.Reel.Length = *cfg.Reel.Length
	}
	if cfg.Reel.LandingMin != nil {
		v.Reel.LandingMin = *cfg.Reel.LandingMin
	}
	if cfg.Reel.Frame != nil {
		v.Reel.Frame = *cfg.Reel.Frame
	}
	if cfg.Reel.Duration != nil {
		v.Reel.Duration = *cfg.Reel.Duration
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func decimalOr(f *float64, def float64) decimal.Decimal {
	if f == nil {
		return decimal.NewFromFloat(def)
	}
	return decimal.NewFromFloat(*f)
}

func rarityList(ids []string) []catalog.Rarity {
	out := make([]catalog.Rarity, len(ids))
	for i, id := range ids {
		out[i] = catalog.Rarity(id)
	}
	return out
}
