// Package feed holds the per-domain order collection and its fetch state.
package feed

import (
	"errors"
	"sync"

	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/order"
)

// Status is the fetch lifecycle of a Store.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrUnknownFailure stands in when SetFailed is called with a nil error.
var ErrUnknownFailure = errors.New("order feed failed")

// Ticket identifies one issued fetch. Only the most recently issued ticket
// may change the store's records.
type Ticket uint64

// State is an immutable snapshot of a Store.
type State struct {
	Domain    enum.Domain
	HotelName string
	Status    Status
	Records   []order.Record
	ActiveTab enum.Tab
	Err       error
	Seq       Ticket
}

// Store is the order collection for one domain. Safe for concurrent use.
type Store struct {
	// deliver serializes transitions with their fan-out, so listeners see
	// states in the order they were applied.
	deliver sync.Mutex

	mu        sync.RWMutex
	domain    enum.Domain
	vocab     enum.Vocabulary
	hotel     string
	status    Status
	records   []order.Record
	tab       enum.Tab
	lastErr   error
	issued    Ticket
	applied   Ticket
	closed    bool
	listeners []func(State)
}

// NewStore creates an Idle store showing the Active tab.
func NewStore(domain enum.Domain, vocab enum.Vocabulary) *Store {
	return &Store{
		domain: domain,
		vocab:  vocab,
		tab:    enum.TabActive,
	}
}

func (s *Store) Domain() enum.Domain { return s.domain }

func (s *Store) Vocabulary() enum.Vocabulary { return s.vocab }

// SetLoading issues a new ticket for a fetch against hotel and moves the
// store to Loading, clearing any previous error. Records belonging to a
// different hotel are dropped at once.
func (s *Store) SetLoading(hotel string) Ticket {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	s.issued++
	t := s.issued
	if s.closed {
		s.mu.Unlock()
		return t
	}
	if hotel != s.hotel {
		s.records = nil
	}
	s.hotel = hotel
	s.status = Loading
	s.lastErr = nil
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return t
}

// SetLoaded replaces the records wholesale. It reports false when the ticket
// has been superseded or the store is closed, in which case nothing changes.
func (s *Store) SetLoaded(t Ticket, records []order.Record) bool {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if !s.acceptLocked(t) {
		s.mu.Unlock()
		return false
	}
	s.records = append([]order.Record(nil), records...)
	s.status = Loaded
	s.lastErr = nil
	s.applied = t
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return true
}

// SetFailed clears the records and keeps err. Same guard as SetLoaded.
func (s *Store) SetFailed(t Ticket, err error) bool {
	if err == nil {
		err = ErrUnknownFailure
	}
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if !s.acceptLocked(t) {
		s.mu.Unlock()
		return false
	}
	s.records = nil
	s.status = Failed
	s.lastErr = err
	s.applied = t
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return true
}

// SelectTab changes which subset View exposes. It never fetches.
func (s *Store) SelectTab(tab enum.Tab) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if s.closed || s.tab == tab {
		s.mu.Unlock()
		return
	}
	s.tab = tab
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every applied state change, in the
// order the changes were applied. Listeners run in the goroutine that
// changed the state and must not call back into the store's setters.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Close tears the store down. Later writes are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.listeners = nil
	s.mu.Unlock()
}

func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Store) acceptLocked(t Ticket) bool {
	return !s.closed && t == s.issued
}

func (s *Store) snapshotLocked() State {
	return State{
		Domain:    s.domain,
		HotelName: s.hotel,
		Status:    s.status,
		Records:   append([]order.Record(nil), s.records...),
		ActiveTab: s.tab,
		Err:       s.lastErr,
		Seq:       s.applied,
	}
}

func (s *Store) notify(st State) {
	s.mu.RLock()
	listeners := append(([]func(State))(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(st)
	}
}
