package sched

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAdvanceFiresEachDueTick(t *testing.T) {
	s := New()
	var got []time.Time
	s.Schedule(Accrual, time.Second, t0, func(at time.Time) { got = append(got, at) })

	if n := s.Advance(t0.Add(999 * time.Millisecond)); n != 0 {
		t.Fatalf("fired %d before first period", n)
	}
	if n := s.Advance(t0.Add(3 * time.Second)); n != 3 {
		t.Fatalf("fired %d want 3", n)
	}
	for i, at := range got {
		if want := t0.Add(time.Duration(i+1) * time.Second); !at.Equal(want) {
			t.Fatalf("tick %d at %v want %v", i, at, want)
		}
	}
	if n := s.Advance(t0.Add(3 * time.Second)); n != 0 {
		t.Fatalf("re-advancing to the same instant fired %d", n)
	}
}

func TestCancelFromCallbackStopsImmediately(t *testing.T) {
	s := New()
	fired := 0
	s.Schedule(BuffExpiry, time.Second, t0, func(time.Time) {
		fired++
		s.Cancel(BuffExpiry)
	})
	s.Advance(t0.Add(10 * time.Second))
	if fired != 1 {
		t.Fatalf("fired %d want 1", fired)
	}
	if s.Has(BuffExpiry) {
		t.Fatal("task should be gone")
	}
}

func TestReplaceFromCallback(t *testing.T) {
	s := New()
	var old, repl int
	s.Schedule(Accrual, time.Second, t0, func(at time.Time) {
		old++
		s.Schedule(Accrual, 2*time.Second, at, func(time.Time) { repl++ })
	})
	// old fires at 1s; its replacement then fires at 3s and 5s
	s.Advance(t0.Add(5 * time.Second))
	if old != 1 || repl != 2 {
		t.Fatalf("old=%d repl=%d want 1/2", old, repl)
	}
	if n := s.Advance(t0.Add(5 * time.Second)); n != 0 {
		t.Fatalf("nothing left due, fired %d", n)
	}
}

func TestTicksInterleaveInTimeOrder(t *testing.T) {
	s := New()
	var order []Key
	s.Schedule(Accrual, 2*time.Second, t0, func(time.Time) { order = append(order, Accrual) })
	s.Schedule(BuffExpiry, 3*time.Second, t0, func(time.Time) { order = append(order, BuffExpiry) })
	s.Advance(t0.Add(6 * time.Second))
	// 2s A, 3s B, 4s A, 6s A then B
	want := []Key{Accrual, BuffExpiry, Accrual, Accrual, BuffExpiry}
	if len(order) != len(want) {
		t.Fatalf("order=%v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order=%v want %v", order, want)
		}
	}
}

func TestKeysSorted(t *testing.T) {
	s := New()
	noop := func(time.Time) {}
	s.Schedule(EventRotation, time.Second, t0, noop)
	s.Schedule(Accrual, time.Second, t0, noop)
	s.Schedule(BuffExpiry, time.Second, t0, noop)
	keys := s.Keys()
	want := []Key{Accrual, BuffExpiry, EventRotation}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys=%v want %v", keys, want)
		}
	}
	s.Cancel(Accrual)
	s.Cancel(Accrual)
	if s.Has(Accrual) || len(s.Keys()) != 2 {
		t.Fatalf("cancel failed: %v", s.Keys())
	}
}
