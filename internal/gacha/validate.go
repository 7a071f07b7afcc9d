package gacha

import (
	"math"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

func validPercent(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

func validateWeights(table catalog.WeightTable, mods []Modifier) error {
	if len(table) == 0 {
		return ErrInvalidWeights
	}
	for _, w := range table {
		if !validPercent(w.Percent) {
			return ErrInvalidWeights
		}
	}
	for _, m := range mods {
		if !validPercent(m.Multiplier) {
			return ErrInvalidWeights
		}
	}
	return nil
}
