package reel

import (
	"testing"
	"time"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
)

func TestBuildPlacesWinnerAtLanding(t *testing.T) {
	winner := catalog.Item{Entry: catalog.Entry{ID: "11"}, InstanceID: "winner"}
	filler := func() catalog.Item { return catalog.Item{Entry: catalog.Entry{ID: "1"}} }
	rng := gacha.NewSeededRNG(42)
	s := DefaultSettings()

	for i := 0; i < 500; i++ {
		r := Build(winner, filler, rng, s)
		if len(r.Items) != 50 {
			t.Fatalf("strip length %d", len(r.Items))
		}
		if r.Landing < 45 || r.Landing >= 50 {
			t.Fatalf("landing %d outside [45,50)", r.Landing)
		}
		if r.Winner().InstanceID != "winner" {
			t.Fatalf("slot %d holds %+v", r.Landing, r.Winner())
		}
		for j, it := range r.Items {
			if j != r.Landing && it.InstanceID == "winner" {
				t.Fatalf("winner duplicated at %d", j)
			}
		}
	}
}

func TestFramesEndOnLanding(t *testing.T) {
	s := DefaultSettings()
	r := Reel{Items: make([]catalog.Item, 50), Landing: 47}
	frames := Frames(r, s)
	// 50ms frames over 3s
	if len(frames) != 60 {
		t.Fatalf("got %d frames want 60", len(frames))
	}
	if frames[len(frames)-1] != 47 {
		t.Fatalf("last frame %d want 47", frames[len(frames)-1])
	}
	if frames[0] != 1 {
		t.Fatalf("first step should move one slot, got %d", frames[0])
	}
	for _, f := range frames {
		if f < 0 || f >= 50 {
			t.Fatalf("frame index %d out of range", f)
		}
	}
}

func TestFromCatalogDefaults(t *testing.T) {
	s := FromCatalog(catalog.ReelSettings{Length: 20, LandingMin: 99})
	if s.Length != 20 || s.LandingMin != 18 {
		t.Fatalf("got %+v", s)
	}
	if s.Frame != 50*time.Millisecond || s.Duration != 3*time.Second {
		t.Fatalf("timing defaults not applied: %+v", s)
	}
}
