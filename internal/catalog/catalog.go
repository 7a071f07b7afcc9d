// Package catalog holds the static, read-only tables of one game variant:
// entries, rarity weights, events, shop buffs and lucky blocks.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rarity is a closed per-variant category deciding draw odds and value.
type Rarity string

// RarityWeight is one row of a weight table.
type RarityWeight struct {
	Rarity  Rarity
	Name    string // display name, e.g. "Legendary"
	Percent float64
}

// WeightTable is ordered; the draw walks it in this order.
type WeightTable []RarityWeight

// Total sums the base percents.
func (t WeightTable) Total() float64 {
	var sum float64
	for _, w := range t {
		sum += w.Percent
	}
	return sum
}

// DisplayName returns the human-readable label for r, or r itself.
func (t WeightTable) DisplayName(r Rarity) string {
	for _, w := range t {
		if w.Rarity == r && w.Name != "" {
			return w.Name
		}
	}
	return string(r)
}

// Entry is a catalog row. Pool == "" means the primary roulette pool; any
// other value makes the entry reachable only from that draw source.
type Entry struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Rarity         Rarity          `json:"rarity"`
	PrimaryValue   decimal.Decimal `json:"coinsPerSec"`
	SecondaryValue int64           `json:"stars"`
	Emoji          string          `json:"emoji"`
	Pool           string          `json:"pool,omitempty"`
}

// Item is an owned copy of an Entry with a unique instance id.
type Item struct {
	Entry
	InstanceID string `json:"instanceId"`
}

// Event is a session- or time-scoped odds modifier.
type Event struct {
	ID         string
	Name       string
	Emoji      string
	Multiplier float64
	Boosted    []Rarity
	Chance     float64 // percent, used by the start-of-session draw
	Duration   time.Duration
}

// BuffKind selects which mechanic a buff alters.
type BuffKind string

const (
	BuffLuck  BuffKind = "luck"  // multiplies boosted rarity weights
	BuffSpeed BuffKind = "speed" // multiplies passive accrual
	BuffSale  BuffKind = "sale"  // multiplies sale value
)

// Buff is a shop-purchasable, time-limited modifier.
type Buff struct {
	ID         string
	Name       string
	Emoji      string
	Cost       int64 // secondary currency
	Duration   time.Duration
	Kind       BuffKind
	Multiplier float64
	Boosted    []Rarity // luck only
}

// Drop is one row of a lucky block drop table.
type Drop struct {
	EntryID string
	Chance  float64
}

// LuckyBlock is a one-shot loot box with its own small drop table.
type LuckyBlock struct {
	ID    string
	Name  string
	Emoji string
	Cost  decimal.Decimal // primary currency
	Drops []Drop
}

// EventPolicy is how a variant manages its events.
type EventPolicy string

const (
	EventsNone    EventPolicy = "none"
	EventsSession EventPolicy = "session" // drawn once at start, no expiry
	EventsRotate  EventPolicy = "rotate"  // timed, swaps to the next in list
	EventsClear   EventPolicy = "clear"   // timed, cleared on expiry
)

// DrawMode picks the range of the uniform roll.
type DrawMode string

const (
	DrawPercent    DrawMode = "percent"    // x in [0,100)
	DrawNormalized DrawMode = "normalized" // x in [0, sum of effective weights)
)

// ReelSettings configure the cosmetic spin animation.
type ReelSettings struct {
	Length     int
	LandingMin int
	Frame      time.Duration
	Duration   time.Duration
}

// Variant is one fully resolved game.
type Variant struct {
	Name            string
	Version         string
	PrimaryName     string
	SecondaryName   string
	SpinCost        decimal.Decimal
	StartPrimary    decimal.Decimal
	StartSecondary  int64
	EquipCap        int
	AccrualInterval time.Duration
	EventPolicy     EventPolicy
	EventTick       time.Duration
	DrawMode        DrawMode
	AdminCode       string
	PrimaryGrants   []decimal.Decimal
	SecondaryGrants []int64
	Weights         WeightTable
	Entries         []Entry
	Events          []Event
	Buffs           []Buff
	LuckyBlocks     []LuckyBlock
	Reel            ReelSettings
}

// Entry looks an entry up by catalog id.
func (v *Variant) Entry(id string) (Entry, bool) {
	for _, e := range v.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// PrimaryPool returns the entries of rarity r reachable from the roulette.
func (v *Variant) PrimaryPool(r Rarity) []Entry {
	var out []Entry
	for _, e := range v.Entries {
		if e.Rarity == r && e.Pool == "" {
			out = append(out, e)
		}
	}
	return out
}

func (v *Variant) Buff(id string) (Buff, bool) {
	for _, b := range v.Buffs {
		if b.ID == id {
			return b, true
		}
	}
	return Buff{}, false
}

func (v *Variant) LuckyBlock(id string) (LuckyBlock, bool) {
	for _, b := range v.LuckyBlocks {
		if b.ID == id {
			return b, true
		}
	}
	return LuckyBlock{}, false
}

// EventIndex returns the position of event id in the list, or -1.
func (v *Variant) EventIndex(id string) int {
	for i, e := range v.Events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (v *Variant) Event(id string) (Event, bool) {
	if i := v.EventIndex(id); i >= 0 {
		return v.Events[i], true
	}
	return Event{}, false
}

// Boosts reports whether r is in the boosted set.
func Boosts(boosted []Rarity, r Rarity) bool {
	for _, b := range boosted {
		if b == r {
			return true
		}
	}
	return false
}
