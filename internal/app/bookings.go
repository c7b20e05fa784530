package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

// BookingService owns the write side of the booking aggregate: creation,
// status transitions, cancellation and deletion. Every operation takes the
// acting principal and runs it through domain.CanAccess before touching
// anything — the single place ownership is decided.
type BookingService struct {
	repo    domain.BookingRepository
	catalog domain.CatalogClient
}

func NewBookingService(r domain.BookingRepository, c domain.CatalogClient) *BookingService {
	return &BookingService{repo: r, catalog: c}
}

type CreateBookingInput struct {
	DestinationID string
	Guests        int
	Stay          domain.StayWindow
	Plan          []RawDayPlan
	Transport     *RawTransportSelection
}

func (s *BookingService) Create(ctx context.Context, p domain.Principal, in CreateBookingInput) (domain.Booking, error) {
	if in.DestinationID == "" {
		return domain.Booking{}, fmt.Errorf("destination id is required: %w", domain.ErrValidation)
	}
	if in.Guests < 1 {
		return domain.Booking{}, fmt.Errorf("guest count must be positive: %w", domain.ErrValidation)
	}
	if !in.Stay.Valid() {
		return domain.Booking{}, fmt.Errorf("stay window start must precede end: %w", domain.ErrValidation)
	}

	destRef := domain.CatalogRef{Kind: domain.KindDestination, ID: in.DestinationID}
	if _, err := s.catalog.Resolve(ctx, destRef); err != nil {
		return domain.Booking{}, fmt.Errorf("destination %s: %w", in.DestinationID, err)
	}

	days, err := NormalizeItinerary(ctx, in.Plan, in.Stay, s.catalog)
	if err != nil {
		return domain.Booking{}, err
	}

	var transport *domain.TransportSelection
	if in.Transport != nil {
		t, err := s.normalizeTransport(ctx, in.Transport)
		if err != nil {
			return domain.Booking{}, err
		}
		transport = t
	}

	b := domain.Booking{
		ID:          uuid.NewString(),
		Owner:       p.ID,
		Destination: destRef,
		Guests:      in.Guests,
		Stay:        in.Stay,
		Days:        days,
		Transport:   transport,
		TotalCost:   domain.ComputeTotal(days, transport),
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return domain.Booking{}, err
	}

	log.Info().
		Str("booking", b.ID).
		Str("owner", b.Owner).
		Float64("total", b.TotalCost).
		Msg("booking created")
	return b, nil
}

func (s *BookingService) normalizeTransport(ctx context.Context, rt *RawTransportSelection) (*domain.TransportSelection, error) {
	if rt.CarID == "" {
		return nil, fmt.Errorf("car id is required: %w", domain.ErrValidation)
	}
	if rt.PricePerDay < 0 {
		return nil, fmt.Errorf("negative transport price: %w", domain.ErrValidation)
	}
	if rt.TotalDays < 1 {
		return nil, fmt.Errorf("transport days must be positive: %w", domain.ErrValidation)
	}
	ref := domain.CatalogRef{Kind: domain.KindCarRental, ID: rt.CarID}
	if _, err := s.catalog.Resolve(ctx, ref); err != nil {
		return nil, fmt.Errorf("car rental %s: %w", rt.CarID, err)
	}
	return &domain.TransportSelection{Car: ref, PricePerDay: rt.PricePerDay, TotalDays: rt.TotalDays}, nil
}

// UpdateStatus applies an admin status transition. Owners cannot move status;
// they only cancel.
func (s *BookingService) UpdateStatus(ctx context.Context, p domain.Principal, id string, next domain.BookingStatus) (domain.Booking, error) {
	if !next.Valid() {
		return domain.Booking{}, fmt.Errorf("status %q: %w", next, domain.ErrValidation)
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !domain.CanAccess(p, b, domain.ActionUpdate) {
		return domain.Booking{}, domain.ErrForbidden
	}
	if !b.Status.CanTransitionTo(next) {
		return domain.Booking{}, fmt.Errorf("%s -> %s: %w", b.Status, next, domain.ErrInvalidTransition)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return domain.Booking{}, err
	}
	b.Status = next
	return b, nil
}

// Cancel moves a booking to cancelled. Cancelling an already-cancelled
// booking is a no-op, not an error.
func (s *BookingService) Cancel(ctx context.Context, p domain.Principal, id string) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanAccess(p, b, domain.ActionCancel) {
		return domain.ErrForbidden
	}
	if b.Status == domain.StatusCancelled {
		return nil
	}
	return s.repo.UpdateStatus(ctx, id, domain.StatusCancelled)
}

func (s *BookingService) Delete(ctx context.Context, p domain.Principal, id string) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanAccess(p, b, domain.ActionDelete) {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
