// Package reel lays out the cosmetic roulette strip around an outcome that
// has already been committed. Nothing here touches session state.
package reel

import (
	"time"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
)

// Settings mirror catalog.ReelSettings with defaults applied.
type Settings struct {
	Length     int
	LandingMin int
	Frame      time.Duration
	Duration   time.Duration
}

// DefaultSettings: a 50-slot strip landing in 45..49, 50 ms frames over 3 s.
func DefaultSettings() Settings {
	return Settings{Length: 50, LandingMin: 45, Frame: 50 * time.Millisecond, Duration: 3 * time.Second}
}

// FromCatalog fills zero fields of s from DefaultSettings.
func FromCatalog(s catalog.ReelSettings) Settings {
	d := DefaultSettings()
	out := Settings{Length: s.Length, LandingMin: s.LandingMin, Frame: s.Frame, Duration: s.Duration}
	if out.Length <= 0 {
		out.Length = d.Length
	}
	if out.LandingMin < 0 || out.LandingMin >= out.Length {
		out.LandingMin = out.Length * 9 / 10
	}
	if out.Frame <= 0 {
		out.Frame = d.Frame
	}
	if out.Duration <= 0 {
		out.Duration = d.Duration
	}
	return out
}

// Reel is the strip shown during a spin. Items[Landing] is the winner.
type Reel struct {
	Items   []catalog.Item
	Landing int
}

// Winner returns the item at the landing slot.
func (r Reel) Winner() catalog.Item { return r.Items[r.Landing] }

// Build places winner at a landing slot drawn from [LandingMin, Length) and
// fills every other slot with filler.
func Build(winner catalog.Item, filler func() catalog.Item, rng gacha.RandomSource, s Settings) Reel {
	landing := s.LandingMin + gacha.Index(s.Length-s.LandingMin, rng)
	items := make([]catalog.Item, s.Length)
	for i := range items {
		if i == landing {
			items[i] = winner
			continue
		}
		items[i] = filler()
	}
	return Reel{Items: items, Landing: landing}
}

// Frames returns the highlighted index per frame. The step grows from 1 to 5
// as the spin progresses and the last frame is always the landing slot.
func Frames(r Reel, s Settings) []int {
	n := len(r.Items)
	if n == 0 {
		return nil
	}
	var out []int
	cur := 0
	for elapsed := s.Frame; ; elapsed += s.Frame {
		progress := float64(elapsed) / float64(s.Duration)
		if progress >= 1 {
			out = append(out, r.Landing)
			return out
		}
		speed := int(1 + progress*5)
		cur = (cur + speed) % n
		out = append(out, cur)
	}
}
