package main

import (
	"flag"
	"fmt"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
)

func runSim(args []string) error {
	set := flag.NewFlagSet("sim", flag.ContinueOnError)
	flags, envFile := commonFlags(set)
	n := set.Int("n", 100000, "number of draws")
	eventID := set.String("event", "", "apply this event's multiplier")
	buffID := set.String("buff", "", "apply this luck buff's multiplier")
	until := set.String("until", "", "measure spins until this rarity instead")
	trials := set.Int("trials", 1000, "trials for -until")
	if err := set.Parse(args); err != nil {
		return err
	}
	a, err := newApp(set, flags, *envFile)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	v, err := a.variant()
	if err != nil {
		return err
	}
	mods, err := simModifiers(v, *eventID, *buffID)
	if err != nil {
		return err
	}

	if *until != "" {
		stats, err := gacha.RunSpinsUntil(v.Weights, v.DrawMode, catalog.Rarity(*until), *trials, a.rng(), mods...)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "spins until %s over %d trials: mean %.1f sd %.1f p50 %.0f p90 %.0f p99 %.0f\n",
			*until, *trials, stats.Mean, stats.StdDev, stats.P50, stats.P90, stats.P99)
		return nil
	}

	rep, err := gacha.RunMonteCarlo(v.Weights, v.DrawMode, *n, a.rng(), mods...)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d draws, %s mode\n", rep.Draws, v.DrawMode)
	fmt.Fprintf(a.out, "%-12s %10s %10s %10s %10s\n", "rarity", "count", "observed", "expected", "delta")
	for _, sh := range rep.Shares {
		fmt.Fprintf(a.out, "%-12s %10d %9.3f%% %9.3f%% %+9.3f%%\n",
			v.Weights.DisplayName(sh.Rarity), sh.Count, sh.Observed*100, sh.Expected*100, sh.Deviation()*100)
	}
	return nil
}

func runOdds(args []string) error {
	set := flag.NewFlagSet("odds", flag.ContinueOnError)
	flags, envFile := commonFlags(set)
	eventID := set.String("event", "", "apply this event's multiplier")
	buffID := set.String("buff", "", "apply this luck buff's multiplier")
	if err := set.Parse(args); err != nil {
		return err
	}
	a, err := newApp(set, flags, *envFile)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	v, err := a.variant()
	if err != nil {
		return err
	}
	mods, err := simModifiers(v, *eventID, *buffID)
	if err != nil {
		return err
	}
	shares, err := gacha.ExpectedShares(v.Weights, v.DrawMode, mods...)
	if err != nil {
		return err
	}
	for i, w := range v.Weights {
		fmt.Fprintf(a.out, "%-12s base %7.3f%%  effective %7.3f%%\n", v.Weights.DisplayName(w.Rarity), w.Percent, shares[i]*100)
	}
	return nil
}

func simModifiers(v *catalog.Variant, eventID, buffID string) ([]gacha.Modifier, error) {
	var mods []gacha.Modifier
	if eventID != "" {
		ev, ok := v.Event(eventID)
		if !ok {
			return nil, fmt.Errorf("unknown event %q", eventID)
		}
		mods = append(mods, gacha.Modifier{Multiplier: ev.Multiplier, Boosted: ev.Boosted})
	}
	if buffID != "" {
		b, ok := v.Buff(buffID)
		if !ok || b.Kind != catalog.BuffLuck {
			return nil, fmt.Errorf("unknown luck buff %q", buffID)
		}
		mods = append(mods, gacha.Modifier{Multiplier: b.Multiplier, Boosted: b.Boosted})
	}
	return mods, nil
}
