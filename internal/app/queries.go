package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

// QueryService is the read side: ownership-checked retrieval plus the
// re-resolution of catalog references for display. Display lookups go through
// the cache; only booking creation requires fresh catalog reads.
type QueryService struct {
	repo     domain.BookingRepository
	catalog  domain.CatalogClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.BookingRepository, c domain.CatalogClient, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, catalog: c, cache: cache, cacheTTL: ttl}
}

// ResolvedRef is a catalog reference joined with the display fields the
// catalog currently lists for it. Resolved is false when the lookup missed —
// the read degrades to the bare reference instead of failing.
type ResolvedRef struct {
	Ref         domain.CatalogRef `json:"ref"`
	Name        string            `json:"name,omitempty"`
	ListedPrice float64           `json:"listedPrice,omitempty"`
	Resolved    bool              `json:"resolved"`
}

// BookingView is a booking plus every embedded reference re-resolved against
// the catalog.
type BookingView struct {
	Booking     domain.Booking `json:"booking"`
	Destination ResolvedRef    `json:"destination"`
	Hotels      []ResolvedRef  `json:"hotels,omitempty"`
	Places      []ResolvedRef  `json:"places,omitempty"`
	Car         *ResolvedRef   `json:"car,omitempty"`
}

func (s *QueryService) GetBooking(ctx context.Context, p domain.Principal, id string) (BookingView, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return BookingView{}, err
	}
	if !domain.CanAccess(p, b, domain.ActionRead) {
		return BookingView{}, domain.ErrForbidden
	}

	view := BookingView{Booking: b, Destination: s.resolve(ctx, b.Destination)}

	seenHotels := map[string]struct{}{}
	seenPlaces := map[string]struct{}{}
	for _, d := range b.Days {
		if d.Lodging != nil {
			if _, ok := seenHotels[d.Lodging.Hotel.ID]; !ok {
				seenHotels[d.Lodging.Hotel.ID] = struct{}{}
				view.Hotels = append(view.Hotels, s.resolve(ctx, d.Lodging.Hotel))
			}
		}
		for _, pl := range d.Places {
			if _, ok := seenPlaces[pl.Place.ID]; !ok {
				seenPlaces[pl.Place.ID] = struct{}{}
				view.Places = append(view.Places, s.resolve(ctx, pl.Place))
			}
		}
	}
	if b.Transport != nil {
		car := s.resolve(ctx, b.Transport.Car)
		view.Car = &car
	}
	return view, nil
}

// ListBookings returns summaries without display resolution: admins see every
// booking, everyone else only their own, newest first (repo ordering).
func (s *QueryService) ListBookings(ctx context.Context, p domain.Principal) ([]domain.Booking, error) {
	if p.IsAdmin() {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, p.ID)
}

func (s *QueryService) resolve(ctx context.Context, ref domain.CatalogRef) ResolvedRef {
	key := fmt.Sprintf("catalog:%s:%s", ref.Kind, ref.ID)

	var entry domain.CatalogEntry
	if ok, _ := s.cache.Get(ctx, key, &entry); ok {
		return ResolvedRef{Ref: ref, Name: entry.Name, ListedPrice: entry.ListedPrice, Resolved: true}
	}

	entry, err := s.catalog.Resolve(ctx, ref)
	if err != nil {
		log.Warn().
			Str("kind", string(ref.Kind)).
			Str("id", ref.ID).
			Err(err).
			Msg("display resolution miss")
		return ResolvedRef{Ref: ref}
	}
	_ = s.cache.Set(ctx, key, entry, int(s.cacheTTL.Seconds()))
	return ResolvedRef{Ref: ref, Name: entry.Name, ListedPrice: entry.ListedPrice, Resolved: true}
}
