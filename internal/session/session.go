// Package session is the single owner of one player's game state. It loads
// from a store.Store on start, saves after every mutation, and drives its
// timed tasks through a sched.Scheduler.
//
// A Session is not safe for concurrent use; call it from one goroutine,
// including Tick.
package session

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/gacha"
	"github.com/xtding233/gacha-roulette/internal/ledger"
	"github.com/xtding233/gacha-roulette/internal/sched"
	"github.com/xtding233/gacha-roulette/internal/store"
)

// Clock returns the current time.
type Clock func() time.Time

// Options configure a Session. Zero fields get working defaults: an
// in-memory store, crypto randomness, wall clock and a no-op logger.
type Options struct {
	Store  store.Store
	RNG    gacha.RandomSource
	Clock  Clock
	Logger *zap.Logger
}

// ActiveBuff is a purchased buff and when it runs out.
type ActiveBuff struct {
	ID        string
	ExpiresAt time.Time
}

// ActiveEvent is the current event. A zero EndsAt never expires.
type ActiveEvent struct {
	ID     string
	EndsAt time.Time
}

type Session struct {
	variant   *catalog.Variant
	ledger    *ledger.Ledger
	inventory []catalog.Item
	equipped  []catalog.Item
	admin     bool
	buff      *ActiveBuff
	event     *ActiveEvent
	rate      decimal.Decimal

	sched   *sched.Scheduler
	store   store.Store
	rng     gacha.RandomSource
	now     Clock
	log     *zap.Logger
	saveErr error
}

// New loads the session for v from opts.Store, falling back to the variant's
// starting state for anything missing or malformed.
func New(v *catalog.Variant, opts Options) *Session {
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.RNG == nil {
		opts.RNG = gacha.DefaultRNG()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Session{
		variant: v,
		sched:   sched.New(),
		store:   opts.Store,
		rng:     opts.RNG,
		now:     opts.Clock,
		log:     opts.Logger.With(zap.String("variant", v.Name)),
	}
	now := s.now()
	s.load()
	s.initEvent(now)
	s.syncTimers(now)
	s.save()
	return s
}

// Variant returns the catalog the session plays.
func (s *Session) Variant() *catalog.Variant { return s.variant }

// Balance returns primary and secondary balances.
func (s *Session) Balance() (decimal.Decimal, int64) {
	return s.ledger.Primary, s.ledger.Secondary
}

// Inventory returns a copy of the owned, unequipped items.
func (s *Session) Inventory() []catalog.Item {
	return append([]catalog.Item(nil), s.inventory...)
}

// Equipped returns a copy of the equip set in order.
func (s *Session) Equipped() []catalog.Item {
	return append([]catalog.Item(nil), s.equipped...)
}

func (s *Session) IsAdmin() bool { return s.admin }

// Rate is the current passive income per accrual tick.
func (s *Session) Rate() decimal.Decimal { return s.rate }

// ActiveBuff returns the buff in effect at the session clock, if any.
func (s *Session) ActiveBuff() (catalog.Buff, ActiveBuff, bool) {
	b, ok := s.activeBuff(s.now())
	if !ok {
		return catalog.Buff{}, ActiveBuff{}, false
	}
	return b, *s.buff, true
}

// CurrentEvent returns the event in effect at the session clock, if any.
func (s *Session) CurrentEvent() (catalog.Event, ActiveEvent, bool) {
	ev, ok := s.activeEvent(s.now())
	if !ok {
		return catalog.Event{}, ActiveEvent{}, false
	}
	return ev, *s.event, true
}

// Reload swaps in a new catalog for the same variant, e.g. after a config
// edit. Owned items are kept; a buff or event the new catalog no longer
// knows is dropped.
func (s *Session) Reload(v *catalog.Variant) {
	now := s.now()
	s.variant = v
	s.clampEquipped()
	if s.buff != nil && !hasBuff(v, s.buff.ID) {
		s.buff = nil
	}
	if s.event != nil && v.EventIndex(s.event.ID) < 0 {
		s.event = nil
		s.initEvent(now)
	}
	for _, k := range s.sched.Keys() {
		s.sched.Cancel(k)
	}
	s.syncTimers(now)
	s.save()
	s.log.Info("catalog reloaded", zap.String("version", v.Version))
}

// Tick runs every timed task due at now and reports how many ticks fired.
func (s *Session) Tick(now time.Time) int {
	return s.sched.Advance(now)
}

// Timers lists the scheduled tasks.
func (s *Session) Timers() []sched.Key { return s.sched.Keys() }

// SaveErr reports the last persistence failure, or nil.
func (s *Session) SaveErr() error { return s.saveErr }

// syncTimers makes the task set match state: accrual iff something is
// equipped, buff expiry iff a buff is held, event rotation iff the event
// can expire.
func (s *Session) syncTimers(now time.Time) {
	if len(s.equipped) == 0 {
		s.sched.Cancel(sched.Accrual)
		s.rate = decimal.Zero
	} else if rate := s.accrualRate(now); !s.sched.Has(sched.Accrual) || !rate.Equal(s.rate) {
		s.rate = rate
		s.sched.Schedule(sched.Accrual, s.variant.AccrualInterval, now, s.accrue)
	}

	if s.buff == nil {
		s.sched.Cancel(sched.BuffExpiry)
	} else if !s.sched.Has(sched.BuffExpiry) {
		s.sched.Schedule(sched.BuffExpiry, s.variant.EventTick, now, s.expireBuff)
	}

	if s.event == nil || s.event.EndsAt.IsZero() {
		s.sched.Cancel(sched.EventRotation)
	} else if !s.sched.Has(sched.EventRotation) {
		s.sched.Schedule(sched.EventRotation, s.variant.EventTick, now, s.expireEvent)
	}
}
