package gacha_test

import (
	"math"
	"testing"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
)

func TestRunSpinsUntilGeometricMean(t *testing.T) {
	// legendary at 7% should take about 1/0.07 spins on average
	st, err := gacha.RunSpinsUntil(petsTable(), catalog.DrawPercent, "legendary", 20000, gacha.NewSeededRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	want := 1 / 0.07
	if math.Abs(st.Mean-want) > 0.5 {
		t.Fatalf("mean spins=%.2f want ~%.2f", st.Mean, want)
	}
	if st.P50 > st.P90 || st.P90 > st.P99 {
		t.Fatalf("percentiles out of order: %+v", st)
	}
}

func TestRunSpinsUntilCertain(t *testing.T) {
	table := catalog.WeightTable{{Rarity: "only", Percent: 100}}
	st, err := gacha.RunSpinsUntil(table, catalog.DrawPercent, "only", 100, gacha.NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if st.Mean != 1 || st.StdDev != 0 {
		t.Fatalf("certain draw should take exactly one spin, got %+v", st)
	}
}

func TestExpectedSharesBaseTable(t *testing.T) {
	shares, err := gacha.ExpectedShares(petsTable(), catalog.DrawPercent)
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for i, w := range petsTable() {
		if math.Abs(shares[i]-w.Percent/100) > 1e-9 {
			t.Fatalf("%s: share %v want %v", w.Rarity, shares[i], w.Percent/100)
		}
		sum += shares[i]
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("shares sum to %v", sum)
	}
}

func TestFrequencyReportLookup(t *testing.T) {
	rep, err := gacha.RunMonteCarlo(petsTable(), catalog.DrawNormalized, 1000, gacha.NewSeededRNG(5))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Draws != 1000 {
		t.Fatalf("draws=%d", rep.Draws)
	}
	total := 0
	for _, s := range rep.Shares {
		total += s.Count
	}
	if total != 1000 {
		t.Fatalf("counts sum to %d", total)
	}
	if _, ok := rep.Share("nope"); ok {
		t.Fatal("unknown rarity should not be found")
	}
}
