package gacha

import (
	"math"
	"sort"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

// Share is one rarity's line in a frequency report.
type Share struct {
	Rarity   catalog.Rarity
	Count    int
	Observed float64 // fraction of draws
	Expected float64 // exact fraction implied by the draw algorithm
}

// Deviation is Observed - Expected.
func (s Share) Deviation() float64 { return s.Observed - s.Expected }

// FrequencyReport summarizes repeated rarity draws.
type FrequencyReport struct {
	Draws  int
	Shares []Share
}

// Share returns the line for r.
func (f FrequencyReport) Share(r catalog.Rarity) (Share, bool) {
	for _, s := range f.Shares {
		if s.Rarity == r {
			return s, true
		}
	}
	return Share{}, false
}

// MaxDeviation is the largest absolute Observed-Expected gap.
func (f FrequencyReport) MaxDeviation() float64 {
	var m float64
	for _, s := range f.Shares {
		m = math.Max(m, math.Abs(s.Deviation()))
	}
	return m
}

// ExpectedShares returns the probability of each rarity (table order) under
// the cumulative walk. In percent mode effective weights beyond 100 are never
// reached and a shortfall below 100 lands on the last rarity.
func ExpectedShares(table catalog.WeightTable, mode catalog.DrawMode, mods ...Modifier) ([]float64, error) {
	if err := validateWeights(table, mods); err != nil {
		return nil, err
	}
	weights := EffectiveWeights(table, mods...)
	out := make([]float64, len(weights))

	if mode == catalog.DrawNormalized {
		var total float64
		for _, w := range weights {
			total += w
		}
		if total == 0 {
			out[0] = 1
			return out, nil
		}
		for i, w := range weights {
			out[i] = w / total
		}
		return out, nil
	}

	clamp := func(v float64) float64 { return math.Min(math.Max(v, 0), 100) }
	var prev, cumulative float64
	for i, w := range weights {
		cumulative += w
		out[i] = (clamp(cumulative) - clamp(prev)) / 100
		prev = cumulative
	}
	out[len(out)-1] += (100 - clamp(cumulative)) / 100
	return out, nil
}

// RunMonteCarlo draws n rarities and reports observed vs expected shares.
func RunMonteCarlo(table catalog.WeightTable, mode catalog.DrawMode, n int, rng RandomSource, mods ...Modifier) (FrequencyReport, error) {
	expected, err := ExpectedShares(table, mode, mods...)
	if err != nil {
		return FrequencyReport{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	idx := make(map[catalog.Rarity]int, len(table))
	for i, w := range table {
		idx[w.Rarity] = i
	}
	counts := make([]int, len(table))
	for i := 0; i < n; i++ {
		r, err := DrawRarity(table, mode, rng, mods...)
		if err != nil {
			return FrequencyReport{}, err
		}
		counts[idx[r]]++
	}

	rep := FrequencyReport{Draws: n, Shares: make([]Share, len(table))}
	for i, w := range table {
		s := Share{Rarity: w.Rarity, Count: counts[i], Expected: expected[i]}
		if n > 0 {
			s.Observed = float64(counts[i]) / float64(n)
		}
		rep.Shares[i] = s
	}
	return rep, nil
}

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	// percentiles
	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// maxSpinsPerTrial caps a single trial when the target is unreachable.
const maxSpinsPerTrial = 1_000_000

// RunSpinsUntil measures, per trial, how many spins it takes to first draw
// target. A table where target has zero share stops each trial at the cap.
func RunSpinsUntil(table catalog.WeightTable, mode catalog.DrawMode, target catalog.Rarity, trials int, rng RandomSource, mods ...Modifier) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		spins := 0
		for spins < maxSpinsPerTrial {
			spins++
			r, err := DrawRarity(table, mode, rng, mods...)
			if err != nil {
				return Stats{}, err
			}
			if r == target {
				break
			}
		}
		samples[i] = spins
	}
	return calcStats(samples), nil
}
