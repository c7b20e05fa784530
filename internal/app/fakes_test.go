package app_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

// ---- fakes shared by the app tests ----

func refKey(ref domain.CatalogRef) string { return fmt.Sprintf("%s:%s", ref.Kind, ref.ID) }

type fakeCatalog struct {
	entries map[string]domain.CatalogEntry
	calls   int
	err     error // forced failure for every lookup
}

func newFakeCatalog(entries ...domain.CatalogEntry) *fakeCatalog {
	m := make(map[string]domain.CatalogEntry, len(entries))
	for _, e := range entries {
		m[refKey(e.Ref)] = e
	}
	return &fakeCatalog{entries: m}
}

func (f *fakeCatalog) Resolve(ctx context.Context, ref domain.CatalogRef) (domain.CatalogEntry, error) {
	f.calls++
	if f.err != nil {
		return domain.CatalogEntry{}, f.err
	}
	e, ok := f.entries[refKey(ref)]
	if !ok {
		return domain.CatalogEntry{}, domain.ErrUnknownReference
	}
	return e, nil
}

type fakeRepo struct {
	byID      map[string]domain.Booking
	order     []string // creation order, oldest first
	createErr error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{byID: map[string]domain.Booking{}} }

func (f *fakeRepo) Create(ctx context.Context, b domain.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[b.ID] = b
	f.order = append(f.order, b.ID)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (domain.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, owner string) ([]domain.Booking, error) {
	var out []domain.Booking
	for i := len(f.order) - 1; i >= 0; i-- {
		if b, ok := f.byID[f.order[i]]; ok && b.Owner == owner {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	for i := len(f.order) - 1; i >= 0; i-- {
		if b, ok := f.byID[f.order[i]]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	f.byID[id] = b
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}
