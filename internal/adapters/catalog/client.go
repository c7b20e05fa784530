package catalog

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/prasanth45bit/travella-server-v2/internal/adapters/observability"
	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

// Client talks to the external catalog service. Lookups are rate limited
// client-side and retried on 429/5xx with exponential backoff, honoring
// Retry-After when the server provides one.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Route segments per reference kind. The catalog exposes plural routes; the
// singular variants are the legacy names still served by older deployments.
var kindPaths = map[domain.RefKind][]string{
	domain.KindDestination: {"destinations", "destination"},
	domain.KindHotel:       {"hotels", "hotel"},
	domain.KindCarRental:   {"car-rentals", "carrental"},
	domain.KindPlace:       {"places", "place"},
}

func (c *Client) Resolve(ctx context.Context, ref domain.CatalogRef) (domain.CatalogEntry, error) {
	paths, ok := kindPaths[ref.Kind]
	if !ok {
		return domain.CatalogEntry{}, fmt.Errorf("reference kind %q: %w", ref.Kind, domain.ErrValidation)
	}
	if ref.ID == "" {
		return domain.CatalogEntry{}, fmt.Errorf("empty reference id: %w", domain.ErrValidation)
	}

	candidates := make([]string, 0, len(paths))
	for _, p := range paths {
		candidates = append(candidates, fmt.Sprintf("%s/%s/%s", c.base, p, ref.ID))
	}

	var payload map[string]any
	start := time.Now()
	err := c.getFirst(ctx, candidates, &payload)
	observability.ObserveExternal("catalog", string(ref.Kind), statusOf(err), time.Since(start))
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	return mapEntry(ref, payload), nil
}

// ---- payload mapping ----

var namePaths = []string{"name", "title", "provider", "carModel", "model", "hotel_name"}

// listed-price field aliases per kind; destinations carry no price.
var pricePaths = map[domain.RefKind][]string{
	domain.KindHotel:     {"pricePerNight", "price_per_night", "perDay", "price"},
	domain.KindCarRental: {"pricePerDay", "price_per_day", "perDay", "price"},
	domain.KindPlace:     {"price", "ticketPrice", "entryFee"},
}

func mapEntry(ref domain.CatalogRef, payload map[string]any) domain.CatalogEntry {
	e := domain.CatalogEntry{Ref: ref}
	for _, k := range namePaths {
		if s, ok := payload[k].(string); ok && s != "" {
			e.Name = s
			break
		}
	}
	if f := firstFloat(payload, pricePaths[ref.Kind]...); f != nil {
		e.ListedPrice = *f
	}
	return e
}

// firstFloat pulls a number out of loosely-typed JSON (float/int/"12,5").
func firstFloat(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// ---- transport internals ----

var (
	ErrUnauthorized = errors.New("catalog: unauthorized")
	ErrForbidden    = errors.New("catalog: forbidden")
)

func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrUnknownReference):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

func (c *Client) getFirst(ctx context.Context, urls []string, out any) error {
	var last error
	for _, u := range urls {
		if err := c.get(ctx, u, out); err != nil {
			if errors.Is(err, domain.ErrUnknownReference) {
				last = err
				continue // try the legacy route before giving up
			}
			return err
		}
		return nil
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "travella/2.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrUnknownReference

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles each attempt (200ms, 400ms, 800ms...) with up to +50%
// jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
