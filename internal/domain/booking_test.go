package domain_test

import (
	"testing"
	"time"

	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to domain.BookingStatus
		ok       bool
	}{
		{domain.StatusPending, domain.StatusConfirmed, true},
		{domain.StatusPending, domain.StatusCancelled, true},
		{domain.StatusConfirmed, domain.StatusCancelled, true},
		{domain.StatusConfirmed, domain.StatusPending, false},
		{domain.StatusCancelled, domain.StatusPending, false},
		{domain.StatusCancelled, domain.StatusConfirmed, false},
		{domain.StatusPending, domain.StatusPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestStayWindowDays(t *testing.T) {
	w := domain.StayWindow{
		Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
	}
	if !w.Valid() {
		t.Fatal("window should be valid")
	}
	if d := w.Days(); d != 3 {
		t.Fatalf("Days() = %d, want 3", d)
	}

	bad := domain.StayWindow{Start: w.End, End: w.Start}
	if bad.Valid() {
		t.Fatal("reversed window should be invalid")
	}
}

func TestEnumValidity(t *testing.T) {
	for _, s := range []domain.TimeSlot{domain.SlotMorning, domain.SlotAfternoon, domain.SlotEvening} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if domain.TimeSlot("midnight").Valid() {
		t.Error("midnight should be invalid")
	}
	if domain.BookingStatus("rejected").Valid() {
		t.Error("rejected should be invalid")
	}
	if !domain.RefKind("car_rental").Valid() {
		t.Error("car_rental should be valid")
	}
}
