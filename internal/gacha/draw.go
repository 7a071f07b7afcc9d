package gacha

import (
	"errors"

	"github.com/google/uuid"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

var (
	ErrInvalidWeights = errors.New("invalid rarity weights; must be finite, >= 0, non-empty")
	ErrEmptyPool      = errors.New("no primary entries for drawn rarity")
	ErrEmptyDrops     = errors.New("empty drop table")
)

// Modifier multiplies the weight of every boosted rarity.
type Modifier struct {
	Multiplier float64
	Boosted    []catalog.Rarity
}

// EffectiveWeights applies mods on top of the base percents, in table order.
// The result need not sum to 100.
func EffectiveWeights(table catalog.WeightTable, mods ...Modifier) []float64 {
	out := make([]float64, len(table))
	for i, w := range table {
		eff := w.Percent
		for _, m := range mods {
			if catalog.Boosts(m.Boosted, w.Rarity) {
				eff *= m.Multiplier
			}
		}
		out[i] = eff
	}
	return out
}

// pick walks weights cumulatively and returns the first index with x <= cumulative.
// Nothing matching falls back to the last index.
func pick(weights []float64, x float64) int {
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if x <= cumulative {
			return i
		}
	}
	return len(weights) - 1
}

func roll(weights []float64, mode catalog.DrawMode, rng RandomSource) float64 {
	if rng == nil {
		rng = DefaultRNG()
	}
	span := 100.0
	if mode == catalog.DrawNormalized {
		span = 0
		for _, w := range weights {
			span += w
		}
	}
	return rng.Float64() * span
}

// DrawRarity selects one rarity from the table under mods.
func DrawRarity(table catalog.WeightTable, mode catalog.DrawMode, rng RandomSource, mods ...Modifier) (catalog.Rarity, error) {
	if err := validateWeights(table, mods); err != nil {
		return "", err
	}
	weights := EffectiveWeights(table, mods...)
	return table[pick(weights, roll(weights, mode, rng))].Rarity, nil
}

// DrawEntry runs the full roulette draw: weighted rarity, then a uniform pick
// among that rarity's primary-pool entries. The returned item carries a fresh
// instance id.
func DrawEntry(v *catalog.Variant, rng RandomSource, mods ...Modifier) (catalog.Item, error) {
	if rng == nil {
		rng = DefaultRNG()
	}
	r, err := DrawRarity(v.Weights, v.DrawMode, rng, mods...)
	if err != nil {
		return catalog.Item{}, err
	}
	pool := v.PrimaryPool(r)
	if len(pool) == 0 {
		return catalog.Item{}, ErrEmptyPool
	}
	return NewItem(pool[Index(len(pool), rng)]), nil
}

// DrawDrop is the lucky block draw over a small fixed drop table; same
// cumulative walk over [0,100), same last-entry fallback.
func DrawDrop(drops []catalog.Drop, rng RandomSource) (catalog.Drop, error) {
	if len(drops) == 0 {
		return catalog.Drop{}, ErrEmptyDrops
	}
	weights := make([]float64, len(drops))
	for i, d := range drops {
		if !validPercent(d.Chance) {
			return catalog.Drop{}, ErrInvalidWeights
		}
		weights[i] = d.Chance
	}
	return drops[pick(weights, roll(weights, catalog.DrawPercent, rng))], nil
}

// NewItem copies e into an owned item with a unique instance id.
func NewItem(e catalog.Entry) catalog.Item {
	return catalog.Item{Entry: e, InstanceID: e.ID + "-" + uuid.NewString()}
}
