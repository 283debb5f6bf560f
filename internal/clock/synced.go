package clock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cabletrack/cabletrack/internal/lib/sl"
)

// fetchTimeout bounds every network time request. On timeout or any
// fetch error the clock keeps serving local time with the last good
// offset.
const fetchTimeout = 5 * time.Second

// Synced is a wall clock adjusted by a cached offset against an HTTP
// time endpoint. The offset refreshes on the given interval; until the
// first successful fetch (and after any failure) it stays at its last
// value, zero initially.
type Synced struct {
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger

	mu     sync.RWMutex
	offset time.Duration
}

// NewSynced builds a Synced clock. Call Run to start the refresh loop.
func NewSynced(endpoint string, log *slog.Logger) *Synced {
	return &Synced{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: fetchTimeout},
		log:        log,
	}
}

// Now returns local UTC time shifted by the cached offset.
func (s *Synced) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().UTC().Add(s.offset)
}

// Run refreshes the offset once immediately and then on every tick of
// interval until ctx is cancelled.
func (s *Synced) Run(ctx context.Context, interval time.Duration) {
	s.refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// timeResponse matches the worldtimeapi-style payload with a unix
// timestamp field.
type timeResponse struct {
	UnixTime int64 `json:"unixtime"`
}

func (s *Synced) refresh(ctx context.Context) {
	const op = "clock.Synced.refresh"

	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	offset, err := s.fetchOffset(reqCtx)
	if err != nil {
		s.log.Warn("time sync failed, keeping local clock", sl.Err(err))
		return
	}

	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()
	s.log.Info("time offset refreshed", slog.String("op", op), slog.Duration("offset", offset))
}

func (s *Synced) fetchOffset(ctx context.Context) (time.Duration, error) {
	const op = "clock.Synced.fetchOffset"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var tr timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	remote := time.Unix(tr.UnixTime, 0).UTC()
	return remote.Sub(time.Now().UTC()), nil
}
