package session_test

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xtding233/gacha-roulette/configs"
	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
	"github.com/xtding233/gacha-roulette/internal/game"
	"github.com/xtding233/gacha-roulette/internal/sched"
	"github.com/xtding233/gacha-roulette/internal/session"
	"github.com/xtding233/gacha-roulette/internal/store"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

type fixedRNG struct{ v float64 }

func (f fixedRNG) Float64() float64 { return f.v }

func variant(t *testing.T, name string) *catalog.Variant {
	t.Helper()
	v, err := game.NewLoader(configs.FS).Load(name, "")
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return v
}

// quietPets is the pets catalog without the start-of-session event roll.
func quietPets(t *testing.T) *catalog.Variant {
	v := variant(t, "pets")
	v.EventPolicy = catalog.EventsNone
	return v
}

func newSession(v *catalog.Variant, st store.Store, rng gacha.RandomSource, c *clock) *session.Session {
	return session.New(v, session.Options{Store: st, RNG: rng, Clock: c.Now})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func hasTimer(s *session.Session, k sched.Key) bool {
	for _, got := range s.Timers() {
		if got == k {
			return true
		}
	}
	return false
}

func seedItems(t *testing.T, st store.Store, v *catalog.Variant, ids ...string) {
	t.Helper()
	var items []catalog.Item
	for _, id := range ids {
		e, ok := v.Entry(id)
		if !ok {
			t.Fatalf("no entry %s", id)
		}
		items = append(items, gacha.NewItem(e))
	}
	b, _ := json.Marshal(items)
	_ = st.Set(session.KeyInventory, string(b))
}

func TestFreshSessionDefaults(t *testing.T) {
	s := newSession(quietPets(t), store.NewMemory(), gacha.NewSeededRNG(1), &clock{t: t0})
	coins, stars := s.Balance()
	if !coins.Equal(dec("500")) || stars != 10 {
		t.Fatalf("start balances %s/%d", coins, stars)
	}
	if len(s.Inventory()) != 0 || len(s.Equipped()) != 0 || s.IsAdmin() {
		t.Fatal("fresh session should be empty")
	}
	if len(s.Timers()) != 0 {
		t.Fatalf("no timers expected, got %v", s.Timers())
	}
}

func TestSpinEndToEnd(t *testing.T) {
	v := quietPets(t)
	s := newSession(v, store.NewMemory(), gacha.NewSeededRNG(42), &clock{t: t0})

	res, err := s.Spin()
	if err != nil {
		t.Fatal(err)
	}
	coins, _ := s.Balance()
	if !coins.Equal(dec("490")) {
		t.Fatalf("coins=%s want 490", coins)
	}
	inv := s.Inventory()
	if len(inv) != 1 || inv[0].InstanceID != res.Item.InstanceID {
		t.Fatalf("inventory %+v", inv)
	}

	want, err := gacha.DrawEntry(v, gacha.NewSeededRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	if res.Item.ID != want.ID || res.Item.Rarity != want.Rarity {
		t.Fatalf("spin drew %s/%s, same seed draws %s/%s", res.Item.ID, res.Item.Rarity, want.ID, want.Rarity)
	}
	if res.Reel.Winner().InstanceID != res.Item.InstanceID {
		t.Fatal("reel must land on the committed item")
	}
	if res.Reel.Landing < 45 || res.Reel.Landing >= 50 {
		t.Fatalf("landing %d", res.Reel.Landing)
	}
}

func TestSpinAtExactCost(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyCoins, "10")
	s := newSession(quietPets(t), st, gacha.NewSeededRNG(1), &clock{t: t0})
	if _, err := s.Spin(); err != nil {
		t.Fatal(err)
	}
	coins, _ := s.Balance()
	if !coins.IsZero() {
		t.Fatalf("coins=%s want 0", coins)
	}
	if raw, _, _ := st.Get(session.KeyCoins); raw != "0" {
		t.Fatalf("stored coins %q", raw)
	}
}

func TestSpinBelowCostRejected(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyCoins, "9")
	s := newSession(quietPets(t), st, gacha.NewSeededRNG(1), &clock{t: t0})
	if _, err := s.Spin(); !errors.Is(err, session.ErrInsufficientPrimary) {
		t.Fatalf("want ErrInsufficientPrimary, got %v", err)
	}
	coins, _ := s.Balance()
	if !coins.Equal(dec("9")) || len(s.Inventory()) != 0 {
		t.Fatalf("rejected spin changed state: coins=%s inv=%d", coins, len(s.Inventory()))
	}
}

func TestEquipCap(t *testing.T) {
	st := store.NewMemory()
	v := quietPets(t)
	seedItems(t, st, v, "1", "2", "3", "4", "5", "6")
	s := newSession(v, st, gacha.NewSeededRNG(1), &clock{t: t0})

	inv := s.Inventory()
	for _, it := range inv[:5] {
		if err := s.Equip(it.InstanceID); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Equip(inv[5].InstanceID); !errors.Is(err, session.ErrEquipFull) {
		t.Fatalf("sixth equip: want ErrEquipFull, got %v", err)
	}
	if len(s.Equipped()) != 5 || len(s.Inventory()) != 1 {
		t.Fatalf("equipped=%d inventory=%d", len(s.Equipped()), len(s.Inventory()))
	}
	// 1+1+3+3+8
	if !s.Rate().Equal(dec("16")) {
		t.Fatalf("rate=%s want 16", s.Rate())
	}
	if err := s.Equip("missing"); !errors.Is(err, session.ErrItemNotFound) {
		t.Fatalf("want ErrItemNotFound, got %v", err)
	}
}

func TestEquipDisabled(t *testing.T) {
	st := store.NewMemory()
	v := variant(t, "crystals")
	seedItems(t, st, v, "quartz")
	s := newSession(v, st, gacha.NewSeededRNG(1), &clock{t: t0})
	if err := s.Equip(s.Inventory()[0].InstanceID); !errors.Is(err, session.ErrEquipDisabled) {
		t.Fatalf("want ErrEquipDisabled, got %v", err)
	}
}

func TestAccrualTicks(t *testing.T) {
	st := store.NewMemory()
	v := quietPets(t)
	seedItems(t, st, v, "5", "9")
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	for _, it := range s.Inventory() {
		if err := s.Equip(it.InstanceID); err != nil {
			t.Fatal(err)
		}
	}
	if !hasTimer(s, sched.Accrual) {
		t.Fatal("accrual should run while equipped")
	}
	before, _ := s.Balance()
	if n := s.Tick(c.Advance(3 * time.Second)); n != 3 {
		t.Fatalf("fired %d ticks want 3", n)
	}
	after, _ := s.Balance()
	// 3 x (8 + 70)
	if got := after.Sub(before); !got.Equal(dec("234")) {
		t.Fatalf("accrued %s want 234", got)
	}
}

func TestAccrualStopsWhenEmpty(t *testing.T) {
	st := store.NewMemory()
	v := quietPets(t)
	seedItems(t, st, v, "1")
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	id := s.Inventory()[0].InstanceID
	_ = s.Equip(id)
	if err := s.Unequip(id); err != nil {
		t.Fatal(err)
	}
	if hasTimer(s, sched.Accrual) || !s.Rate().IsZero() {
		t.Fatalf("accrual still scheduled: %v rate=%s", s.Timers(), s.Rate())
	}
	before, _ := s.Balance()
	s.Tick(c.Advance(10 * time.Second))
	after, _ := s.Balance()
	if !after.Equal(before) {
		t.Fatalf("balance moved %s -> %s with nothing equipped", before, after)
	}
}

func TestFractionalAccrual(t *testing.T) {
	st := store.NewMemory()
	v := variant(t, "loot")
	seedItems(t, st, v, "sword")
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	_ = s.Equip(s.Inventory()[0].InstanceID)
	s.Tick(c.Advance(3 * time.Second))
	gold, _ := s.Balance()
	if !gold.Equal(dec("101.5")) {
		t.Fatalf("gold=%s want 101.5", gold)
	}
}

func TestOneBuffAtATime(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyStars, "100")
	c := &clock{t: t0}
	s := newSession(variant(t, "loot"), st, gacha.NewSeededRNG(1), c)

	if _, err := s.BuyBuff("luck"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.BuyBuff("speed"); !errors.Is(err, session.ErrBuffActive) {
		t.Fatalf("second buff: want ErrBuffActive, got %v", err)
	}
	if _, gems := s.Balance(); gems != 80 {
		t.Fatalf("gems=%d want 80", gems)
	}
	if b, _, ok := s.ActiveBuff(); !ok || b.ID != "luck" {
		t.Fatalf("active buff %+v ok=%v", b, ok)
	}
	if !hasTimer(s, sched.BuffExpiry) {
		t.Fatal("buff expiry should be scheduled")
	}

	s.Tick(c.Advance(time.Minute))
	if _, _, ok := s.ActiveBuff(); ok {
		t.Fatal("luck should have expired after one minute")
	}
	if hasTimer(s, sched.BuffExpiry) {
		t.Fatal("expiry timer should be cancelled")
	}
	if _, ok, _ := st.Get(session.KeyActiveBuff); ok {
		t.Fatal("expired buff still stored")
	}
	if _, err := s.BuyBuff("speed"); err != nil {
		t.Fatalf("buy after expiry: %v", err)
	}
}

func TestBuffRejections(t *testing.T) {
	s := newSession(variant(t, "loot"), store.NewMemory(), gacha.NewSeededRNG(1), &clock{t: t0})
	if _, err := s.BuyBuff("luck"); !errors.Is(err, session.ErrInsufficientSecondary) {
		t.Fatalf("want ErrInsufficientSecondary, got %v", err)
	}
	if _, err := s.BuyBuff("nope"); !errors.Is(err, session.ErrUnknownBuff) {
		t.Fatalf("want ErrUnknownBuff, got %v", err)
	}
}

func TestLuckBuffShiftsOdds(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyStars, "100")
	s := newSession(variant(t, "loot"), st, gacha.NewSeededRNG(1), &clock{t: t0})
	before := s.Odds()
	if _, err := s.BuyBuff("luck"); err != nil {
		t.Fatal(err)
	}
	after := s.Odds()
	for i, o := range after {
		switch o.Rarity {
		case "common", "uncommon":
			if o.Effective >= before[i].Effective {
				t.Fatalf("%s should get rarer: %.3f -> %.3f", o.Rarity, before[i].Effective, o.Effective)
			}
		default:
			if o.Effective <= before[i].Effective {
				t.Fatalf("%s should get likelier: %.3f -> %.3f", o.Rarity, before[i].Effective, o.Effective)
			}
		}
	}
}

func TestSpeedBuffDoublesAccrual(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyStars, "100")
	v := variant(t, "loot")
	seedItems(t, st, v, "staff")
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	_ = s.Equip(s.Inventory()[0].InstanceID)
	if _, err := s.BuyBuff("speed"); err != nil {
		t.Fatal(err)
	}
	if !s.Rate().Equal(dec("8")) {
		t.Fatalf("rate=%s want 8", s.Rate())
	}
	s.Tick(c.Advance(2 * time.Second))
	gold, _ := s.Balance()
	if !gold.Equal(dec("116")) {
		t.Fatalf("gold=%s want 116", gold)
	}

	s.Tick(c.Advance(time.Minute))
	if !s.Rate().Equal(dec("4")) {
		t.Fatalf("rate after expiry=%s want 4", s.Rate())
	}
}

func TestSpeedBuffEndsAtExpiry(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyStars, "100")
	v := variant(t, "loot")
	seedItems(t, st, v, "crown")
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	_ = s.Equip(s.Inventory()[0].InstanceID)
	if _, err := s.BuyBuff("speed"); err != nil {
		t.Fatal(err)
	}
	before, _ := s.Balance()
	s.Tick(c.Advance(time.Minute))
	after, _ := s.Balance()
	// 59 ticks at 80/sec, then the tick at expiry pays the base 40
	if got := after.Sub(before); !got.Equal(dec("4760")) {
		t.Fatalf("gained %s want 4760", got)
	}
}

func TestResumedSpeedBuffStopsBetweenChecks(t *testing.T) {
	st := store.NewMemory()
	v := variant(t, "loot")
	seedItems(t, st, v, "crown")
	// expiry falls between two once-a-second checks
	_ = st.Set(session.KeyActiveBuff, "speed")
	_ = st.Set(session.KeyBuffExpiry, strconv.FormatInt(t0.Add(30500*time.Millisecond).UnixMilli(), 10))
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	_ = s.Equip(s.Inventory()[0].InstanceID)
	if !s.Rate().Equal(dec("80")) {
		t.Fatalf("rate=%s want 80 while boosted", s.Rate())
	}
	before, _ := s.Balance()
	s.Tick(c.Advance(32 * time.Second))
	after, _ := s.Balance()
	// 30 boosted ticks, then the ticks at 31s and 32s pay 40
	if got := after.Sub(before); !got.Equal(dec("2480")) {
		t.Fatalf("gained %s want 2480", got)
	}
}

func TestSaleBuffTruncates(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyStars, "100")
	v := variant(t, "loot")
	seedItems(t, st, v, "staff", "sword")
	s := newSession(v, st, gacha.NewSeededRNG(1), &clock{t: t0})
	if _, err := s.BuyBuff("boost"); err != nil {
		t.Fatal(err)
	}
	inv := s.Inventory()
	got, err := s.Sell(inv[0].InstanceID)
	if err != nil {
		t.Fatal(err)
	}
	// 7 x 1.5 = 10.5
	if got != 10 {
		t.Fatalf("staff sold for %d want 10", got)
	}
	got, _ = s.Sell(inv[1].InstanceID)
	if got != 1 {
		t.Fatalf("sword sold for %d want 1", got)
	}
	if _, gems := s.Balance(); gems != 100-25+10+1 {
		t.Fatalf("gems=%d", gems)
	}
	if len(s.Inventory()) != 0 {
		t.Fatal("sold items still owned")
	}
	if _, err := s.Sell(inv[0].InstanceID); !errors.Is(err, session.ErrItemNotFound) {
		t.Fatalf("double sell: want ErrItemNotFound, got %v", err)
	}
}

func TestSellWithoutBuff(t *testing.T) {
	st := store.NewMemory()
	v := quietPets(t)
	seedItems(t, st, v, "11")
	s := newSession(v, st, gacha.NewSeededRNG(1), &clock{t: t0})
	got, err := s.Sell(s.Inventory()[0].InstanceID)
	if err != nil || got != 800 {
		t.Fatalf("sold for %d err=%v", got, err)
	}
	if _, stars := s.Balance(); stars != 810 {
		t.Fatalf("stars=%d want 810", stars)
	}
}

func TestRotatingEventsWrap(t *testing.T) {
	st := store.NewMemory()
	c := &clock{t: t0}
	s := newSession(variant(t, "loot"), st, gacha.NewSeededRNG(1), c)

	want := []struct {
		after time.Duration
		id    string
	}{
		{0, "golden_hour"},
		{5 * time.Minute, "lucky_streak"},
		{5 * time.Minute, "calm"},
		{10 * time.Minute, "golden_hour"},
	}
	for i, w := range want {
		s.Tick(c.Advance(w.after))
		ev, _, ok := s.CurrentEvent()
		if !ok || ev.ID != w.id {
			t.Fatalf("step %d: event %q ok=%v want %q", i, ev.ID, ok, w.id)
		}
	}
	raw, _, _ := st.Get(session.KeyCurrentEvent)
	if !strings.Contains(raw, "golden_hour") {
		t.Fatalf("stored event %q", raw)
	}
	if !hasTimer(s, sched.EventRotation) {
		t.Fatal("rotation should keep running")
	}
}

func TestRotatingEventResumes(t *testing.T) {
	st := store.NewMemory()
	c := &clock{t: t0}
	v := variant(t, "loot")
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	s.Tick(c.Advance(6 * time.Minute))
	_, first, _ := s.CurrentEvent()

	c.Advance(time.Minute)
	s2 := newSession(v, st, gacha.NewSeededRNG(1), c)
	ev, resumed, ok := s2.CurrentEvent()
	if !ok || ev.ID != "lucky_streak" || !resumed.EndsAt.Equal(first.EndsAt) {
		t.Fatalf("resumed %+v want lucky_streak ending %v", resumed, first.EndsAt)
	}
}

func TestClearingEventEnds(t *testing.T) {
	st := store.NewMemory()
	c := &clock{t: t0}
	// roll 10 lands in eclipse's 30% band
	s := newSession(variant(t, "crystals"), st, fixedRNG{0.1}, c)
	ev, active, ok := s.CurrentEvent()
	if !ok || ev.ID != "eclipse" || !active.EndsAt.Equal(t0.Add(10*time.Minute)) {
		t.Fatalf("event %+v %+v ok=%v", ev, active, ok)
	}

	s.Tick(c.Advance(10 * time.Minute))
	if _, _, ok := s.CurrentEvent(); ok {
		t.Fatal("event should be over")
	}
	if hasTimer(s, sched.EventRotation) {
		t.Fatal("nothing left to expire")
	}
	if _, ok, _ := st.Get(session.KeyCurrentEvent); ok {
		t.Fatal("cleared event still stored")
	}
}

func TestSessionEventRoll(t *testing.T) {
	st := store.NewMemory()
	s := newSession(variant(t, "pets"), st, fixedRNG{0.1}, &clock{t: t0})
	ev, active, ok := s.CurrentEvent()
	if !ok || ev.ID != "cometstrike" || !active.EndsAt.IsZero() {
		t.Fatalf("event %+v ok=%v", active, ok)
	}
	if _, ok, _ := st.Get(session.KeyCurrentEvent); ok {
		t.Fatal("session-scoped event must not be stored")
	}

	// 12.7 + 12.7 + 6.742 leaves most rolls without an event
	none := newSession(variant(t, "pets"), store.NewMemory(), fixedRNG{0.5}, &clock{t: t0})
	if _, _, ok := none.CurrentEvent(); ok {
		t.Fatal("roll of 50 should give no event")
	}
}

func TestLuckyBlockDrawsOnlyItsPool(t *testing.T) {
	st := store.NewMemory()
	s := newSession(quietPets(t), st, fixedRNG{0.99}, &clock{t: t0})
	it, err := s.OpenLuckyBlock("lb_six_seven")
	if err != nil {
		t.Fatal(err)
	}
	if it.ID != "lb3" {
		t.Fatalf("roll 99 should draw lb3, got %s", it.ID)
	}
	coins, _ := s.Balance()
	if !coins.Equal(dec("450")) {
		t.Fatalf("coins=%s want 450", coins)
	}

	s = newSession(quietPets(t), store.NewMemory(), gacha.NewSeededRNG(8), &clock{t: t0})
	_ = s.UnlockAdmin("123")
	_ = s.GrantPrimary(dec("10000"))
	for i := 0; i < 100; i++ {
		it, err := s.OpenLuckyBlock("lb_six_seven")
		if err != nil {
			t.Fatal(err)
		}
		if it.Pool != "lucky" {
			t.Fatalf("lucky block gave primary-pool entry %s", it.ID)
		}
	}
	if _, err := s.OpenLuckyBlock("nope"); !errors.Is(err, session.ErrUnknownLuckyBlock) {
		t.Fatalf("want ErrUnknownLuckyBlock, got %v", err)
	}
}

func TestLuckyBlockInsufficient(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyCoins, "49.9")
	s := newSession(quietPets(t), st, gacha.NewSeededRNG(1), &clock{t: t0})
	if _, err := s.OpenLuckyBlock("lb_six_seven"); !errors.Is(err, session.ErrInsufficientPrimary) {
		t.Fatalf("want ErrInsufficientPrimary, got %v", err)
	}
	if len(s.Inventory()) != 0 {
		t.Fatal("failed open added an item")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	st := store.NewMemory()
	v := quietPets(t)
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(3), c)
	for i := 0; i < 3; i++ {
		if _, err := s.Spin(); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.Equip(s.Inventory()[0].InstanceID)
	_ = s.UnlockAdmin("123")
	s.Tick(c.Advance(2 * time.Second))

	r := newSession(v, st, gacha.NewSeededRNG(4), c)
	c1, s1 := s.Balance()
	c2, s2 := r.Balance()
	if !c1.Equal(c2) || s1 != s2 {
		t.Fatalf("balances %s/%d reloaded as %s/%d", c1, s1, c2, s2)
	}
	if !r.IsAdmin() {
		t.Fatal("admin flag lost")
	}
	if len(r.Inventory()) != 2 || len(r.Equipped()) != 1 {
		t.Fatalf("reloaded inv=%d equipped=%d", len(r.Inventory()), len(r.Equipped()))
	}
	if r.Equipped()[0].InstanceID != s.Equipped()[0].InstanceID {
		t.Fatal("equipped instance id changed across reload")
	}
	if !hasTimer(r, sched.Accrual) || !r.Rate().Equal(s.Rate()) {
		t.Fatalf("accrual not resumed: %v rate=%s", r.Timers(), r.Rate())
	}
}

func TestBuffSurvivesReload(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyStars, "100")
	v := variant(t, "loot")
	c := &clock{t: t0}
	s := newSession(v, st, gacha.NewSeededRNG(1), c)
	_, _ = s.BuyBuff("luck")

	c.Advance(30 * time.Second)
	r := newSession(v, st, gacha.NewSeededRNG(1), c)
	b, held, ok := r.ActiveBuff()
	if !ok || b.ID != "luck" || !held.ExpiresAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("reloaded buff %+v ok=%v", held, ok)
	}
}

func TestMalformedStateFallsBack(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyCoins, "lots")
	_ = st.Set(session.KeyStars, "1.5")
	_ = st.Set(session.KeyInventory, "{not json")
	_ = st.Set(session.KeyEquipped, "[1,2,3]")
	_ = st.Set(session.KeyActiveBuff, "ghost")
	_ = st.Set(session.KeyBuffExpiry, "soon")
	s := newSession(variant(t, "loot"), st, gacha.NewSeededRNG(1), &clock{t: t0})

	gold, gems := s.Balance()
	if !gold.Equal(dec("100")) || gems != 0 {
		t.Fatalf("balances %s/%d want defaults", gold, gems)
	}
	if len(s.Inventory()) != 0 || len(s.Equipped()) != 0 {
		t.Fatal("malformed items should load as empty")
	}
	if _, _, ok := s.ActiveBuff(); ok {
		t.Fatal("malformed buff should be dropped")
	}
	if raw, _, _ := st.Get(session.KeyCoins); raw != "100" {
		t.Fatalf("defaults should be written back, coins=%q", raw)
	}
}

func TestEquipOverflowOnLoad(t *testing.T) {
	st := store.NewMemory()
	v := variant(t, "loot")
	var items []catalog.Item
	for _, id := range []string{"sword", "shield", "bow", "potion"} {
		e, _ := v.Entry(id)
		items = append(items, gacha.NewItem(e))
	}
	b, _ := json.Marshal(items)
	_ = st.Set(session.KeyEquipped, string(b))

	s := newSession(v, st, gacha.NewSeededRNG(1), &clock{t: t0})
	if len(s.Equipped()) != 3 || len(s.Inventory()) != 1 {
		t.Fatalf("equipped=%d inventory=%d want 3/1", len(s.Equipped()), len(s.Inventory()))
	}
}

func TestAdmin(t *testing.T) {
	s := newSession(quietPets(t), store.NewMemory(), gacha.NewSeededRNG(1), &clock{t: t0})
	if err := s.GrantPrimary(dec("1000")); !errors.Is(err, session.ErrNotAdmin) {
		t.Fatalf("grant before unlock: %v", err)
	}
	if err := s.UnlockAdmin("321"); !errors.Is(err, session.ErrWrongAdminCode) || s.IsAdmin() {
		t.Fatalf("wrong code: %v admin=%v", err, s.IsAdmin())
	}
	if err := s.UnlockAdmin("123"); err != nil {
		t.Fatal(err)
	}
	if err := s.GrantPrimary(dec("10000")); err != nil {
		t.Fatal(err)
	}
	if err := s.GrantPrimary(dec("5")); !errors.Is(err, session.ErrGrantNotAllowed) {
		t.Fatalf("off-menu grant: %v", err)
	}
	if err := s.GrantSecondary(1000); err != nil {
		t.Fatal(err)
	}
	coins, stars := s.Balance()
	if !coins.Equal(dec("10500")) || stars != 1010 {
		t.Fatalf("balances %s/%d", coins, stars)
	}
}

func TestResetKeepsAdmin(t *testing.T) {
	st := store.NewMemory()
	v := quietPets(t)
	seedItems(t, st, v, "1", "2")
	s := newSession(v, st, gacha.NewSeededRNG(1), &clock{t: t0})
	if err := s.Reset(); !errors.Is(err, session.ErrNotAdmin) {
		t.Fatalf("reset without admin: %v", err)
	}
	_ = s.UnlockAdmin("123")
	_ = s.Equip(s.Inventory()[0].InstanceID)
	_, _ = s.Spin()
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	coins, stars := s.Balance()
	if !coins.Equal(dec("500")) || stars != 10 || len(s.Inventory()) != 0 || len(s.Equipped()) != 0 {
		t.Fatalf("after reset %s/%d inv=%d eq=%d", coins, stars, len(s.Inventory()), len(s.Equipped()))
	}
	if !s.IsAdmin() || hasTimer(s, sched.Accrual) {
		t.Fatalf("admin=%v timers=%v", s.IsAdmin(), s.Timers())
	}
}

func TestReloadDropsUnknownBuff(t *testing.T) {
	st := store.NewMemory()
	_ = st.Set(session.KeyStars, "100")
	c := &clock{t: t0}
	s := newSession(variant(t, "loot"), st, gacha.NewSeededRNG(1), c)
	_, _ = s.BuyBuff("luck")

	next := variant(t, "loot")
	next.Buffs = next.Buffs[1:]
	next.EquipCap = 1
	s.Reload(next)
	if _, _, ok := s.ActiveBuff(); ok {
		t.Fatal("buff removed from catalog should be dropped")
	}
	if hasTimer(s, sched.BuffExpiry) {
		t.Fatal("expiry timer should go with the buff")
	}
	if s.Variant() != next {
		t.Fatal("variant not swapped")
	}
}

type failingStore struct{ *store.Memory }

func (failingStore) Set(string, string) error { return errors.New("disk full") }

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	st := failingStore{store.NewMemory()}
	s := newSession(quietPets(t), st, gacha.NewSeededRNG(1), &clock{t: t0})
	if s.SaveErr() == nil {
		t.Fatal("save error should be reported")
	}
	if _, err := s.Spin(); err != nil {
		t.Fatal(err)
	}
	if len(s.Inventory()) != 1 {
		t.Fatal("in-memory state should still advance")
	}
}
