package domain

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal lifecycle move.
// cancelled is terminal; confirmed never goes back to pending.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	default:
		return false
	}
}

type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

func (t TimeSlot) Valid() bool {
	switch t {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}

// StayWindow is the [Start, End) span of the trip.
type StayWindow struct {
	Start time.Time
	End   time.Time
}

func (w StayWindow) Valid() bool { return w.Start.Before(w.End) }

// Days returns the number of nights between Start and End.
func (w StayWindow) Days() int { return int(w.End.Sub(w.Start).Hours() / 24) }

type PlaceSelection struct {
	Place    CatalogRef
	TimeSlot TimeSlot
	Price    float64
}

type LodgingSelection struct {
	Hotel         CatalogRef
	PricePerNight float64
}

// DayPlan is one day's selections within the itinerary. DayIndex values are
// unique across a booking and fall within [0, Days(Stay)].
type DayPlan struct {
	DayIndex int
	Places   []PlaceSelection
	Lodging  *LodgingSelection
}

type TransportSelection struct {
	Car         CatalogRef
	PricePerDay float64
	TotalDays   int
}

// Booking is the aggregate root: one user's assembled trip. TotalCost is
// derived via ComputeTotal and never taken from client input.
type Booking struct {
	ID          string
	Owner       string
	Destination CatalogRef
	Guests      int
	Stay        StayWindow
	Days        []DayPlan
	Transport   *TransportSelection
	TotalCost   float64
	Status      BookingStatus
	CreatedAt   time.Time
}
