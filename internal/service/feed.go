package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hotelstaff/orderfeed/internal/backend"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/feed"
	"github.com/hotelstaff/orderfeed/internal/metrics"
	"github.com/hotelstaff/orderfeed/internal/order"
	"go.uber.org/zap"
)

// Errors returned by the feed coordinator.
var (
	ErrUnknownDomain     = errors.New("unknown order domain")
	ErrCoordinatorClosed = errors.New("feed coordinator closed")
	ErrDiscarded         = errors.New("fetch result discarded: superseded or store closed")
)

// OrderLister fetches one domain's order feed.
// Satisfied by *backend.Client; narrow interface for testability.
type OrderLister interface {
	ListOrders(ctx context.Context, domain enum.Domain, hotel string) ([]order.Record, error)
}

// inflight is the fetch currently allowed to write a domain's store.
type inflight struct {
	ticket feed.Ticket
	cancel context.CancelFunc
}

// FeedCoordinator issues list fetches and applies their outcome to the
// per-domain stores. A newer fetch for a domain cancels the older one, and
// the store only accepts the newest ticket, so a slow stale response can
// never overwrite fresher data.
type FeedCoordinator struct {
	lister  OrderLister
	stores  map[enum.Domain]*feed.Store
	log     *zap.Logger
	metrics *metrics.Recorder

	mu       sync.Mutex
	inflight map[enum.Domain]inflight
	closed   bool
}

// NewFeedCoordinator creates a coordinator over the given stores.
func NewFeedCoordinator(lister OrderLister, stores map[enum.Domain]*feed.Store, log *zap.Logger, m *metrics.Recorder) *FeedCoordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedCoordinator{
		lister:   lister,
		stores:   stores,
		log:      log,
		metrics:  m,
		inflight: make(map[enum.Domain]inflight),
	}
}

// Store returns the store of a domain, or nil.
func (c *FeedCoordinator) Store(domain enum.Domain) *feed.Store {
	return c.stores[domain]
}

// FetchList runs one list fetch for domain and hotel and blocks until its
// outcome is applied or discarded.
//
// Outcomes:
//   - success: Loaded with the fetched records, nil.
//   - contract violation: logged, Loaded with no records, nil.
//   - empty hotel: Failed, backend.ErrMissingHotel; no network call.
//   - transport failure: Failed, the transport error.
//   - superseded or torn down: nothing applied, ErrDiscarded.
func (c *FeedCoordinator) FetchList(ctx context.Context, domain enum.Domain, hotel string) error {
	store, ok := c.stores[domain]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	log := c.log.With(zap.String("domain", domain.Slug()), zap.String("hotel", hotel))

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCoordinatorClosed
	}
	if prev, ok := c.inflight[domain]; ok {
		prev.cancel()
	}
	ticket := store.SetLoading(hotel)
	c.inflight[domain] = inflight{ticket: ticket, cancel: cancel}
	c.mu.Unlock()

	defer c.release(domain, ticket)

	if strings.TrimSpace(hotel) == "" {
		log.Error("order feed requested without hotel context")
		c.metrics.Fetch(domain.Slug(), metrics.OutcomeConfig, 0)
		if !store.SetFailed(ticket, backend.ErrMissingHotel) {
			return ErrDiscarded
		}
		return backend.ErrMissingHotel
	}

	start := time.Now()
	records, err := c.lister.ListOrders(fetchCtx, domain, hotel)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		if !store.SetLoaded(ticket, records) {
			c.metrics.Fetch(domain.Slug(), metrics.OutcomeSuperseded, elapsed)
			return ErrDiscarded
		}
		c.metrics.Fetch(domain.Slug(), metrics.OutcomeLoaded, elapsed)
		log.Debug("order feed loaded", zap.Int("orders", len(records)), zap.Duration("elapsed", elapsed))
		return nil

	case backend.IsContract(err):
		if !store.SetLoaded(ticket, nil) {
			c.metrics.Fetch(domain.Slug(), metrics.OutcomeSuperseded, elapsed)
			return ErrDiscarded
		}
		c.metrics.Fetch(domain.Slug(), metrics.OutcomeSoftFail, elapsed)
		log.Warn("order feed payload has unexpected shape; showing no orders", zap.Error(err))
		return nil

	default:
		if !store.SetFailed(ticket, err) {
			c.metrics.Fetch(domain.Slug(), metrics.OutcomeSuperseded, elapsed)
			log.Debug("discarding result of superseded order feed fetch", zap.Error(err))
			return ErrDiscarded
		}
		c.metrics.Fetch(domain.Slug(), metrics.OutcomeFailed, elapsed)
		log.Error("order feed fetch failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return err
	}
}

func (c *FeedCoordinator) release(domain enum.Domain, ticket feed.Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.inflight[domain]; ok && cur.ticket == ticket {
		delete(c.inflight, domain)
	}
}

// Close cancels every in-flight fetch and closes the stores. Results that
// arrive afterwards are discarded.
func (c *FeedCoordinator) Close() {
	c.mu.Lock()
	c.closed = true
	for d, f := range c.inflight {
		f.cancel()
		delete(c.inflight, d)
	}
	c.mu.Unlock()

	for _, s := range c.stores {
		s.Close()
	}
}
