package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prasanth45bit/travella-server-v2/internal/adapters/auth"
	"github.com/prasanth45bit/travella-server-v2/internal/app"
	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

// ---- fakes ----

type memRepo struct {
	byID  map[string]domain.Booking
	order []string
}

func (f *memRepo) Create(ctx context.Context, b domain.Booking) error {
	f.byID[b.ID] = b
	f.order = append(f.order, b.ID)
	return nil
}

func (f *memRepo) Get(ctx context.Context, id string) (domain.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *memRepo) ListByOwner(ctx context.Context, owner string) ([]domain.Booking, error) {
	var out []domain.Booking
	for i := len(f.order) - 1; i >= 0; i-- {
		if b, ok := f.byID[f.order[i]]; ok && b.Owner == owner {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *memRepo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	for i := len(f.order) - 1; i >= 0; i-- {
		if b, ok := f.byID[f.order[i]]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *memRepo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	f.byID[id] = b
	return nil
}

func (f *memRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type memCatalog struct{ entries map[string]domain.CatalogEntry }

func (f *memCatalog) Resolve(ctx context.Context, ref domain.CatalogRef) (domain.CatalogEntry, error) {
	e, ok := f.entries[fmt.Sprintf("%s:%s", ref.Kind, ref.ID)]
	if !ok {
		return domain.CatalogEntry{}, domain.ErrUnknownReference
	}
	return e, nil
}

type noCache struct{}

func (noCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (noCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (noCache) Del(ctx context.Context, key string) error { return nil }

// ---- setup ----

const testSecret = "handlers-test-secret"

func token(t *testing.T, sub, role string) string {
	t.Helper()
	claims := auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	catalog := &memCatalog{entries: map[string]domain.CatalogEntry{
		"destination:D1": {Ref: domain.CatalogRef{Kind: domain.KindDestination, ID: "D1"}, Name: "Lisbon"},
		"place:P1":       {Ref: domain.CatalogRef{Kind: domain.KindPlace, ID: "P1"}, Name: "Old Town", ListedPrice: 12},
		"hotel:H1":       {Ref: domain.CatalogRef{Kind: domain.KindHotel, ID: "H1"}, Name: "Hotel One", ListedPrice: 50},
		"car_rental:C1":  {Ref: domain.CatalogRef{Kind: domain.KindCarRental, ID: "C1"}, Name: "Compact", ListedPrice: 20},
	}}
	repo := &memRepo{byID: map[string]domain.Booking{}}

	verifier, err := auth.NewVerifier(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	srv := New()
	srv.MountHandlers(&Handlers{
		B: app.NewBookingService(repo, catalog),
		Q: app.NewQueryService(repo, catalog, noCache{}, time.Minute),
	}, verifier)

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, bearer string, body any, extra http.Header) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func createPayload() map[string]any {
	return map[string]any{
		"destinationId": "D1",
		"guests":        2,
		"startDate":     "2024-06-01",
		"endDate":       "2024-06-04",
		"customPlan": []map[string]any{{
			"dayIndex": 0,
			"places":   []map[string]any{{"placeId": "P1", "timeSlot": "morning", "price": 10}},
			"lodging":  map[string]any{"hotelId": "H1", "pricePerNight": 50},
		}},
	}
}

// ---- tests ----

func TestAPI_RequiresAuth(t *testing.T) {
	ts := newAPI(t)

	resp := do(t, http.MethodGet, ts.URL+"/v1/bookings", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content-type = %q", ct)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/bookings", "garbage-token", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", resp.StatusCode)
	}
}

func TestAPI_CreateBooking(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")

	resp := do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, createPayload(), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	b := decode[domain.Booking](t, resp)
	if b.Owner != "alice" {
		t.Errorf("owner = %q", b.Owner)
	}
	if b.Status != domain.StatusPending {
		t.Errorf("status = %q", b.Status)
	}
	if b.TotalCost != 60 {
		t.Errorf("totalCost = %v, want 60", b.TotalCost)
	}
}

func TestAPI_CreateIgnoresClientTotal(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")

	payload := createPayload()
	payload["totalCost"] = 1 // unknown field, server recomputes
	resp := do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, payload, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	b := decode[domain.Booking](t, resp)
	if b.TotalCost != 60 {
		t.Errorf("totalCost = %v, want server-computed 60", b.TotalCost)
	}
}

func TestAPI_CreateRejections(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")

	unknownDest := createPayload()
	unknownDest["destinationId"] = "atlantis"

	badDate := createPayload()
	badDate["startDate"] = "06/01/2024"

	cases := []struct {
		name string
		body any
		want int
	}{
		{"unknown destination", unknownDest, http.StatusUnprocessableEntity},
		{"bad date format", badDate, http.StatusBadRequest},
		{"malformed json", "not json", http.StatusBadRequest},
		{"empty body", map[string]any{}, http.StatusBadRequest},
	}
	for _, c := range cases {
		resp := do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, c.body, nil)
		if resp.StatusCode != c.want {
			t.Errorf("%s: status = %d, want %d", c.name, resp.StatusCode, c.want)
		}
	}
}

func TestAPI_GetBooking_OwnershipAndETag(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")
	bob := token(t, "bob", "user")

	created := decode[domain.Booking](t, do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, createPayload(), nil))
	url := ts.URL + "/v1/bookings/" + created.ID

	resp := do(t, http.MethodGet, url, bob, nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger read: status = %d, want 403", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, url, alice, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner read: status = %d, want 200", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	view := decode[app.BookingView](t, resp)
	if view.Destination.Name != "Lisbon" {
		t.Errorf("destination = %+v", view.Destination)
	}

	resp = do(t, http.MethodGet, url, alice, nil, http.Header{"If-None-Match": {etag}})
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional read: status = %d, want 304", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/bookings/nope", alice, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing booking: status = %d, want 404", resp.StatusCode)
	}
}

func TestAPI_ListScoping(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")
	bob := token(t, "bob", "user")
	admin := token(t, "root", "admin")

	do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, createPayload(), nil)
	do(t, http.MethodPost, ts.URL+"/v1/bookings", bob, createPayload(), nil)

	mine := decode[[]domain.Booking](t, do(t, http.MethodGet, ts.URL+"/v1/bookings", alice, nil, nil))
	if len(mine) != 1 || mine[0].Owner != "alice" {
		t.Fatalf("alice list = %+v", mine)
	}

	all := decode[[]domain.Booking](t, do(t, http.MethodGet, ts.URL+"/v1/bookings", admin, nil, nil))
	if len(all) != 2 {
		t.Fatalf("admin sees %d, want 2", len(all))
	}
}

func TestAPI_StatusTransitions(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")
	admin := token(t, "root", "admin")

	created := decode[domain.Booking](t, do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, createPayload(), nil))
	url := ts.URL + "/v1/bookings/" + created.ID + "/status"

	resp := do(t, http.MethodPatch, url, alice, map[string]string{"status": "confirmed"}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("owner confirm: status = %d, want 403", resp.StatusCode)
	}

	resp = do(t, http.MethodPatch, url, admin, map[string]string{"status": "confirmed"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin confirm: status = %d, want 200", resp.StatusCode)
	}
	if b := decode[domain.Booking](t, resp); b.Status != domain.StatusConfirmed {
		t.Fatalf("status = %q", b.Status)
	}

	resp = do(t, http.MethodPatch, url, admin, map[string]string{"status": "pending"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("confirmed->pending: status = %d, want 409", resp.StatusCode)
	}

	resp = do(t, http.MethodPatch, url, admin, map[string]string{"status": "rejected"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bogus status: status = %d, want 400", resp.StatusCode)
	}
}

func TestAPI_CancelIdempotent(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")
	bob := token(t, "bob", "user")

	created := decode[domain.Booking](t, do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, createPayload(), nil))
	url := ts.URL + "/v1/bookings/" + created.ID + "/cancel"

	if resp := do(t, http.MethodPost, url, bob, nil, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger cancel: status = %d, want 403", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, url, alice, nil, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("first cancel: status = %d, want 204", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, url, alice, nil, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("second cancel: status = %d, want 204", resp.StatusCode)
	}

	got := decode[app.BookingView](t, do(t, http.MethodGet, ts.URL+"/v1/bookings/"+created.ID, alice, nil, nil))
	if got.Booking.Status != domain.StatusCancelled {
		t.Fatalf("status = %q, want cancelled", got.Booking.Status)
	}
}

func TestAPI_Delete(t *testing.T) {
	ts := newAPI(t)
	alice := token(t, "alice", "user")
	bob := token(t, "bob", "user")

	created := decode[domain.Booking](t, do(t, http.MethodPost, ts.URL+"/v1/bookings", alice, createPayload(), nil))
	url := ts.URL + "/v1/bookings/" + created.ID

	if resp := do(t, http.MethodDelete, url, bob, nil, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("stranger delete: status = %d, want 403", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, url, alice, nil, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("owner delete: status = %d, want 204", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, url, alice, nil, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("after delete: status = %d, want 404", resp.StatusCode)
	}
}

func TestAPI_Healthz(t *testing.T) {
	ts := newAPI(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
