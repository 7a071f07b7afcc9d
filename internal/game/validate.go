package game

import (
	"fmt"
	"math"
	"strings"
)

// weightTolerance absorbs float error in sums like 2.8 + 0.2.
const weightTolerance = 1e-9

// ValidateRaw checks semantic constraints of a merged RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// draw.rarities
	rarities := map[string]float64{}
	var total float64
	if len(cfg.Draw.Rarities) == 0 {
		errs = append(errs, "draw.rarities must not be empty")
	}
	for i, r := range cfg.Draw.Rarities {
		if r.ID == "" {
			errs = append(errs, fmt.Sprintf("draw.rarities[%d].id is required", i))
			continue
		}
		if _, dup := rarities[r.ID]; dup {
			errs = append(errs, fmt.Sprintf("draw.rarities: duplicate rarity %q", r.ID))
		}
		if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight < 0 {
			errs = append(errs, fmt.Sprintf("draw.rarities[%d].weight must be a finite number >= 0", i))
		}
		rarities[r.ID] = r.Weight
		total += r.Weight
	}
	if len(cfg.Draw.Rarities) > 0 && math.Abs(total-100) > weightTolerance {
		errs = append(errs, fmt.Sprintf("draw.rarities weights must sum to 100, got %g", total))
	}
	switch cfg.Draw.Mode {
	case "", "percent", "normalized":
	default:
		errs = append(errs, "draw.mode must be one of: percent, normalized")
	}

	// economy
	if cfg.Economy.SpinCost == nil || *cfg.Economy.SpinCost <= 0 {
		errs = append(errs, "economy.spin_cost must be > 0")
	}
	if cfg.Economy.StartPrimary != nil && *cfg.Economy.StartPrimary < 0 {
		errs = append(errs, "economy.start_primary must be >= 0")
	}
	if cfg.Economy.StartSecondary != nil && *cfg.Economy.StartSecondary < 0 {
		errs = append(errs, "economy.start_secondary must be >= 0")
	}
	if cfg.Economy.EquipCap != nil && *cfg.Economy.EquipCap < 0 {
		errs = append(errs, "economy.equip_cap must be >= 0 (0 disables equipping)")
	}
	if cfg.Economy.AccrualInterval != nil && *cfg.Economy.AccrualInterval <= 0 {
		errs = append(errs, "economy.accrual_interval must be > 0")
	}

	// entries
	ids := map[string]bool{}
	primaryPool := map[string]int{}
	for i, e := range cfg.Entries {
		if e.ID == "" {
			errs = append(errs, fmt.Sprintf("entries[%d].id is required", i))
		}
		if ids[e.ID] {
			errs = append(errs, fmt.Sprintf("entries: duplicate id %q", e.ID))
		}
		ids[e.ID] = true
		if _, ok := rarities[e.Rarity]; !ok {
			errs = append(errs, fmt.Sprintf("entries[%d].rarity %q is not a known rarity", i, e.Rarity))
		}
		if e.Primary < 0 || e.Secondary < 0 {
			errs = append(errs, fmt.Sprintf("entries[%d] values must be >= 0", i))
		}
		if e.Pool == "" {
			primaryPool[e.Rarity]++
		}
	}
	for i, r := range cfg.Draw.Rarities {
		switch {
		case r.Weight > 0 && primaryPool[r.ID] == 0:
			errs = append(errs, fmt.Sprintf("rarity %q has weight but no primary-pool entries", r.ID))
		case i == len(cfg.Draw.Rarities)-1 && primaryPool[r.ID] == 0:
			// an uncovered roll falls back to the last rarity
			errs = append(errs, fmt.Sprintf("last rarity %q needs primary-pool entries", r.ID))
		}
	}

	// events
	switch cfg.Events.Policy {
	case "", "none", "session":
	case "rotate", "clear":
		for i, ev := range cfg.Events.List {
			if ev.Duration <= 0 {
				errs = append(errs, fmt.Sprintf("events.list[%d].duration must be > 0 for policy=%s", i, cfg.Events.Policy))
			}
		}
		if cfg.Events.Policy == "rotate" && len(cfg.Events.List) == 0 {
			errs = append(errs, "events.list must not be empty for policy=rotate")
		}
	default:
		errs = append(errs, "events.policy must be one of: none, session, rotate, clear")
	}
	if cfg.Events.Tick != nil && *cfg.Events.Tick <= 0 {
		errs = append(errs, "events.tick must be > 0")
	}
	var chance float64
	for i, ev := range cfg.Events.List {
		if ev.ID == "" {
			errs = append(errs, fmt.Sprintf("events.list[%d].id is required", i))
		}
		if !(ev.Multiplier > 0) {
			errs = append(errs, fmt.Sprintf("events.list[%d].multiplier must be > 0", i))
		}
		if ev.Chance < 0 {
			errs = append(errs, fmt.Sprintf("events.list[%d].chance must be >= 0", i))
		}
		chance += ev.Chance
		errs = append(errs, unknownRarities(fmt.Sprintf("events.list[%d].boosted", i), ev.Boosted, rarities)...)
	}
	if chance > 100+weightTolerance {
		errs = append(errs, fmt.Sprintf("events.list chances must sum to <= 100, got %g", chance))
	}

	// buffs
	buffIDs := map[string]bool{}
	for i, b := range cfg.Buffs {
		if b.ID == "" || buffIDs[b.ID] {
			errs = append(errs, fmt.Sprintf("buffs[%d].id must be unique and non-empty", i))
		}
		buffIDs[b.ID] = true
		switch b.Kind {
		case "luck", "speed", "sale":
		default:
			errs = append(errs, fmt.Sprintf("buffs[%d].kind must be one of: luck, speed, sale", i))
		}
		if !(b.Multiplier > 0) {
			errs = append(errs, fmt.Sprintf("buffs[%d].multiplier must be > 0", i))
		}
		if b.Cost < 0 {
			errs = append(errs, fmt.Sprintf("buffs[%d].cost must be >= 0", i))
		}
		if b.Duration <= 0 {
			errs = append(errs, fmt.Sprintf("buffs[%d].duration must be > 0", i))
		}
		errs = append(errs, unknownRarities(fmt.Sprintf("buffs[%d].boosted", i), b.Boosted, rarities)...)
	}

	// lucky blocks
	for i, lb := range cfg.LuckyBlocks {
		if lb.ID == "" {
			errs = append(errs, fmt.Sprintf("lucky_blocks[%d].id is required", i))
		}
		if lb.Cost < 0 {
			errs = append(errs, fmt.Sprintf("lucky_blocks[%d].cost must be >= 0", i))
		}
		if len(lb.Drops) == 0 {
			errs = append(errs, fmt.Sprintf("lucky_blocks[%d].drops must not be empty", i))
		}
		var sum float64
		for j, d := range lb.Drops {
			if !ids[d.Entry] {
				errs = append(errs, fmt.Sprintf("lucky_blocks[%d].drops[%d].entry %q is not a known entry", i, j, d.Entry))
			}
			if d.Chance < 0 {
				errs = append(errs, fmt.Sprintf("lucky_blocks[%d].drops[%d].chance must be >= 0", i, j))
			}
			sum += d.Chance
		}
		if len(lb.Drops) > 0 && math.Abs(sum-100) > weightTolerance {
			errs = append(errs, fmt.Sprintf("lucky_blocks[%d].drops chances must sum to 100, got %g", i, sum))
		}
	}

	// admin
	for _, g := range cfg.Admin.PrimaryGrants {
		if g <= 0 {
			errs = append(errs, "admin.primary_grants must be > 0")
			break
		}
	}
	for _, g := range cfg.Admin.SecondaryGrants {
		if g <= 0 {
			errs = append(errs, "admin.secondary_grants must be > 0")
			break
		}
	}

	// reel
	if cfg.Reel.Length != nil && *cfg.Reel.Length <= 0 {
		errs = append(errs, "reel.length must be > 0")
	}
	if cfg.Reel.Length != nil && cfg.Reel.LandingMin != nil {
		if *cfg.Reel.LandingMin < 0 || *cfg.Reel.LandingMin >= *cfg.Reel.Length {
			errs = append(errs, "reel.landing_min must satisfy 0 <= landing_min < length")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func unknownRarities(field string, boosted []string, known map[string]float64) []string {
	var errs []string
	for _, r := range boosted {
		if _, ok := known[r]; !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown rarity %q", field, r))
		}
	}
	return errs
}
