package app

import (
	"context"
	"fmt"

	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

// Raw itinerary input as submitted by clients. Prices are pointers so an
// omitted price can fall back to the catalog's listed price.

type RawPlaceSelection struct {
	PlaceID  string   `json:"placeId"`
	TimeSlot string   `json:"timeSlot"`
	Price    *float64 `json:"price,omitempty"`
}

type RawLodgingSelection struct {
	HotelID       string  `json:"hotelId"`
	PricePerNight float64 `json:"pricePerNight"`
}

type RawDayPlan struct {
	DayIndex int                  `json:"dayIndex"`
	Places   []RawPlaceSelection  `json:"places"`
	Lodging  *RawLodgingSelection `json:"lodging,omitempty"`
}

type RawTransportSelection struct {
	CarID       string  `json:"carId"`
	PricePerDay float64 `json:"pricePerDay"`
	TotalDays   int     `json:"totalDays"`
}

// NormalizeItinerary validates the raw day-wise plan against the stay window
// and resolves every embedded reference through the catalog. It is a pure
// transformation apart from the read-only lookups: no writes, no caching —
// creation-time resolution is always fresh.
func NormalizeItinerary(ctx context.Context, raw []RawDayPlan, stay domain.StayWindow, catalog domain.CatalogClient) ([]domain.DayPlan, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("itinerary must contain at least one day: %w", domain.ErrValidation)
	}

	maxDay := stay.Days()
	seen := make(map[int]struct{}, len(raw))
	out := make([]domain.DayPlan, 0, len(raw))

	for _, rd := range raw {
		if rd.DayIndex < 0 || rd.DayIndex > maxDay {
			return nil, fmt.Errorf("day index %d outside stay window [0,%d]: %w", rd.DayIndex, maxDay, domain.ErrValidation)
		}
		if _, dup := seen[rd.DayIndex]; dup {
			return nil, fmt.Errorf("duplicate day index %d: %w", rd.DayIndex, domain.ErrValidation)
		}
		seen[rd.DayIndex] = struct{}{}

		dp := domain.DayPlan{DayIndex: rd.DayIndex}

		for _, rp := range rd.Places {
			if rp.PlaceID == "" {
				return nil, fmt.Errorf("day %d: place id is required: %w", rd.DayIndex, domain.ErrValidation)
			}
			slot := domain.TimeSlot(rp.TimeSlot)
			if !slot.Valid() {
				return nil, fmt.Errorf("day %d: time slot %q: %w", rd.DayIndex, rp.TimeSlot, domain.ErrValidation)
			}
			if rp.Price != nil && *rp.Price < 0 {
				return nil, fmt.Errorf("day %d: negative place price: %w", rd.DayIndex, domain.ErrValidation)
			}

			ref := domain.CatalogRef{Kind: domain.KindPlace, ID: rp.PlaceID}
			entry, err := catalog.Resolve(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("place %s: %w", rp.PlaceID, err)
			}
			price := entry.ListedPrice
			if rp.Price != nil {
				price = *rp.Price
			}
			dp.Places = append(dp.Places, domain.PlaceSelection{Place: ref, TimeSlot: slot, Price: price})
		}

		if rd.Lodging != nil {
			if rd.Lodging.HotelID == "" {
				return nil, fmt.Errorf("day %d: hotel id is required: %w", rd.DayIndex, domain.ErrValidation)
			}
			if rd.Lodging.PricePerNight < 0 {
				return nil, fmt.Errorf("day %d: negative lodging price: %w", rd.DayIndex, domain.ErrValidation)
			}
			ref := domain.CatalogRef{Kind: domain.KindHotel, ID: rd.Lodging.HotelID}
			if _, err := catalog.Resolve(ctx, ref); err != nil {
				return nil, fmt.Errorf("hotel %s: %w", rd.Lodging.HotelID, err)
			}
			dp.Lodging = &domain.LodgingSelection{Hotel: ref, PricePerNight: rd.Lodging.PricePerNight}
		}

		out = append(out, dp)
	}
	return out, nil
}
