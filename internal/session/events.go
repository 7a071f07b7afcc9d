package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/internal/catalog"
)

// initEvent sets up the event per the variant's policy; a resumed event is
// kept as loaded, even if already past its end, and expires on the next tick.
func (s *Session) initEvent(now time.Time) {
	v := s.variant
	switch v.EventPolicy {
	case catalog.EventsSession:
		s.event = nil
		if ev, ok := s.rollEvent(); ok {
			s.event = &ActiveEvent{ID: ev.ID}
		}
	case catalog.EventsRotate:
		if s.event != nil && v.EventIndex(s.event.ID) >= 0 && !s.event.EndsAt.IsZero() {
			return
		}
		s.event = nil
		if len(v.Events) > 0 {
			first := v.Events[0]
			s.event = &ActiveEvent{ID: first.ID, EndsAt: now.Add(first.Duration)}
		}
	case catalog.EventsClear:
		if s.event != nil && v.EventIndex(s.event.ID) >= 0 && !s.event.EndsAt.IsZero() {
			return
		}
		s.event = nil
		if ev, ok := s.rollEvent(); ok {
			s.event = &ActiveEvent{ID: ev.ID, EndsAt: now.Add(ev.Duration)}
		}
	default:
		s.event = nil
	}
	if s.event != nil {
		s.log.Info("event started", zap.String("event", s.event.ID), zap.Time("ends", s.event.EndsAt))
	}
}

// rollEvent draws over the listed chances in [0,100); a roll past them all
// means no event.
func (s *Session) rollEvent() (catalog.Event, bool) {
	x := s.rng.Float64() * 100
	var cumulative float64
	for _, ev := range s.variant.Events {
		cumulative += ev.Chance
		if x <= cumulative {
			return ev, true
		}
	}
	return catalog.Event{}, false
}

// activeEvent resolves the current event if it is running at now.
func (s *Session) activeEvent(now time.Time) (catalog.Event, bool) {
	if s.event == nil {
		return catalog.Event{}, false
	}
	if !s.event.EndsAt.IsZero() && !now.Before(s.event.EndsAt) {
		return catalog.Event{}, false
	}
	return s.variant.Event(s.event.ID)
}

func (s *Session) expireEvent(at time.Time) {
	if s.event == nil || s.event.EndsAt.IsZero() || at.Before(s.event.EndsAt) {
		return
	}
	prev := s.event.ID
	switch s.variant.EventPolicy {
	case catalog.EventsRotate:
		i := s.variant.EventIndex(prev)
		next := s.variant.Events[(i+1)%len(s.variant.Events)]
		s.event = &ActiveEvent{ID: next.ID, EndsAt: at.Add(next.Duration)}
		s.log.Info("event rotated", zap.String("from", prev), zap.String("to", next.ID), zap.Time("ends", s.event.EndsAt))
	default:
		s.event = nil
		s.log.Info("event ended", zap.String("event", prev))
	}
	s.syncTimers(at)
	s.save()
}
