// Package session owns the single active hotel context: its two order feeds,
// its detail cache and its push registration.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/feed"
	"github.com/hotelstaff/orderfeed/internal/metrics"
	"github.com/hotelstaff/orderfeed/internal/order"
	"github.com/hotelstaff/orderfeed/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSession     = errors.New("no active session")
	ErrSessionClosed = errors.New("session closed")
)

// Backend is everything a session needs from the order backend.
// Satisfied by *backend.Client.
type Backend interface {
	service.OrderLister
	service.DetailFetcher
	service.TokenSaver
}

// Session is one hotel context. Both feeds and the push registration start
// together on Enter and stop together on Close.
type Session struct {
	ID        uuid.UUID
	Hotel     string
	StartedAt time.Time

	feeds     *service.FeedCoordinator
	details   *service.DetailResolver
	registrar *service.Registrar
	device    service.Device
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu        sync.RWMutex
	reg       order.Registration
	listeners []func(order.Registration)
	closed    bool
}

func newSession(b Backend, hotel string, device service.Device, vocabs map[enum.Domain]enum.Vocabulary, log *zap.Logger, m *metrics.Recorder) *Session {
	stores := make(map[enum.Domain]*feed.Store, len(enum.Domains))
	for _, d := range enum.Domains {
		vocab, ok := vocabs[d]
		if !ok {
			vocab = enum.LiveVocabulary
		}
		stores[d] = feed.NewStore(d, vocab)
	}

	id := uuid.New()
	log = log.With(zap.String("session_id", id.String()), zap.String("hotel", hotel))
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		Hotel:     hotel,
		StartedAt: time.Now(),
		feeds:     service.NewFeedCoordinator(b, stores, log, m),
		details:   service.NewDetailResolver(b, log, m),
		registrar: service.NewRegistrar(b, log, m),
		device:    device,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Enter starts the Room fetch, the Outdoor fetch and the push registration.
// They run independently: a failure or a slow step in one never delays or
// cancels the others.
func (s *Session) Enter() {
	for _, d := range enum.Domains {
		s.fetch(d)
	}
	s.group.Go(func() error {
		reg := s.registrar.Register(s.ctx, s.device, s.Hotel)
		s.setRegistration(reg)
		return nil
	})
}

// Refresh re-runs the list fetch for domain in the background. Any fetch
// still in flight for that domain is superseded, and the domain's cached
// details are dropped so they are fetched again on next open.
func (s *Session) Refresh(domain enum.Domain) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	if s.feeds.Store(domain) == nil {
		return fmt.Errorf("%w: %q", service.ErrUnknownDomain, domain)
	}
	s.details.InvalidateDomain(domain)
	s.fetch(domain)
	return nil
}

func (s *Session) fetch(domain enum.Domain) {
	s.group.Go(func() error {
		err := s.feeds.FetchList(s.ctx, domain, s.Hotel)
		if errors.Is(err, service.ErrDiscarded) || errors.Is(err, service.ErrCoordinatorClosed) {
			return nil
		}
		return err
	})
}

// Wait blocks until every workflow started so far has finished and returns
// the first list fetch error, if any.
func (s *Session) Wait() error {
	return s.group.Wait()
}

// Store returns the feed store for domain, or nil.
func (s *Session) Store(domain enum.Domain) *feed.Store {
	return s.feeds.Store(domain)
}

// Detail resolves an order detail within this session's hotel.
func (s *Session) Detail(ctx context.Context, domain enum.Domain, id order.ID) (service.DetailView, error) {
	if s.Closed() {
		return service.DetailView{}, ErrSessionClosed
	}
	return s.details.Resolve(ctx, s.detailKey(domain, id))
}

// SelectStatus changes the displayed status of a loaded detail.
func (s *Session) SelectStatus(domain enum.Domain, id order.ID, status string) (service.DetailView, error) {
	if s.Closed() {
		return service.DetailView{}, ErrSessionClosed
	}
	return s.details.SelectStatus(s.detailKey(domain, id), status)
}

func (s *Session) detailKey(domain enum.Domain, id order.ID) service.DetailKey {
	return service.DetailKey{Domain: domain, OrderID: id, HotelName: s.Hotel}
}

// Registration returns the push registration state. Done is false while the
// workflow is still running.
func (s *Session) Registration() order.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg
}

// OnRegistration registers fn to be called once the registration finishes.
func (s *Session) OnRegistration(fn func(order.Registration)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) setRegistration(reg order.Registration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.reg = reg
	listeners := append(([]func(order.Registration))(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(reg)
	}
}

// Close cancels every in-flight workflow and tears down both stores. Results
// arriving afterwards are dropped. Close does not wait; call Wait for that.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.listeners = nil
	s.mu.Unlock()

	s.cancel()
	s.feeds.Close()
	s.log.Info("session closed")
}

func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
