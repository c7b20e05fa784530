package keepalive

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// Pinger periodically GETs a URL so free-tier hosting doesn't idle the
// service out. A weighted(1) semaphore guards the run: if a ping is still in
// flight when the ticker fires again, the tick is skipped instead of piling
// up goroutines.
type Pinger struct {
	url      string
	interval time.Duration
	hc       *http.Client
	sem      *semaphore.Weighted
}

func New(url string, interval time.Duration) *Pinger {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Pinger{
		url:      url,
		interval: interval,
		hc:       &http.Client{Timeout: 30 * time.Second},
		sem:      semaphore.NewWeighted(1),
	}
}

// Start runs the ping loop until ctx is done. Call in a goroutine.
func (p *Pinger) Start(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.pingOnce(ctx)
		}
	}
}

func (p *Pinger) pingOnce(ctx context.Context) {
	if !p.sem.TryAcquire(1) {
		log.Debug().Str("url", p.url).Msg("keepalive ping still running, skipping tick")
		return
	}
	defer p.sem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		log.Warn().Err(err).Msg("keepalive request build failed")
		return
	}
	resp, err := p.hc.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", p.url).Msg("keepalive ping failed")
		return
	}
	resp.Body.Close()
	log.Debug().Int("status", resp.StatusCode).Str("url", p.url).Msg("keepalive ping")
}
