package domain

import "context"

type BookingRepository interface {
	// Create must be atomic: either the whole booking becomes visible or
	// nothing does.
	Create(ctx context.Context, b Booking) error
	Get(ctx context.Context, id string) (Booking, error)
	ListByOwner(ctx context.Context, owner string) ([]Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)
	UpdateStatus(ctx context.Context, id string, status BookingStatus) error
	Delete(ctx context.Context, id string) error
}

// CatalogClient resolves references against the external read-only catalog.
// Implementations return ErrUnknownReference for ids the catalog does not know.
type CatalogClient interface {
	Resolve(ctx context.Context, ref CatalogRef) (CatalogEntry, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TokenVerifier is the authentication collaborator: token in, principal out.
// The core never parses or issues tokens itself.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
