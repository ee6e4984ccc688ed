package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hotelstaff/orderfeed/internal/backend"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/metrics"
	"github.com/hotelstaff/orderfeed/internal/order"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DetailFailureMessage is shown when a detail cannot be loaded. Unlike the
// list feed there is nothing sensible to fall back to, so contract
// violations surface as failures too.
const DetailFailureMessage = "Failed to load order details"

var (
	ErrInvalidStatus   = errors.New("status must be one of PROCESSING, COMPLETE, CANCEL")
	ErrDetailNotLoaded = errors.New("order detail has not been loaded")
)

// DetailFetcher fetches one order's line items.
// Satisfied by *backend.Client; narrow interface for testability.
type DetailFetcher interface {
	GetOrderDetail(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error)
}

// DetailKey identifies a cached detail.
type DetailKey struct {
	Domain    enum.Domain
	OrderID   order.ID
	HotelName string
}

func (k DetailKey) String() string {
	return string(k.Domain) + "|" + k.HotelName + "|" + string(k.OrderID)
}

// StatusStyle is how a status value is rendered.
type StatusStyle struct {
	Color  string `json:"color"`
	Weight string `json:"weight"`
}

// StatusStyleFor maps a selected status to its display style.
func StatusStyleFor(status string) StatusStyle {
	switch status {
	case enum.DetailStatusProcessing:
		return StatusStyle{Color: "#FFA500", Weight: "bold"}
	case enum.DetailStatusComplete:
		return StatusStyle{Color: "#26a318", Weight: "bold"}
	case enum.DetailStatusCancel:
		return StatusStyle{Color: "#FF6347", Weight: "bold"}
	default:
		return StatusStyle{Color: "#000", Weight: "normal"}
	}
}

// DetailView is a resolved detail plus its local display state.
type DetailView struct {
	Detail         order.Detail `json:"detail"`
	SelectedStatus string       `json:"selected_status"`
	Style          StatusStyle  `json:"style"`
	ShowTotals     bool         `json:"show_totals"`
}

type detailEntry struct {
	detail   order.Detail
	selected string
}

func (e *detailEntry) view() DetailView {
	d := e.detail
	d.Items = make([]order.LineItem, len(e.detail.Items))
	copy(d.Items, e.detail.Items)
	return DetailView{
		Detail:         d,
		SelectedStatus: e.selected,
		Style:          StatusStyleFor(e.selected),
		ShowTotals:     d.OverallTax.Valid && d.TotalPrice.Valid,
	}
}

// DetailResolver fetches order details on demand and caches them per
// (domain, order, hotel). Concurrent resolves of one key share a request.
// Failures are never cached.
type DetailResolver struct {
	fetcher DetailFetcher
	log     *zap.Logger
	metrics *metrics.Recorder

	group singleflight.Group
	mu    sync.RWMutex
	cache map[DetailKey]*detailEntry
}

func NewDetailResolver(fetcher DetailFetcher, log *zap.Logger, m *metrics.Recorder) *DetailResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &DetailResolver{
		fetcher: fetcher,
		log:     log,
		metrics: m,
		cache:   make(map[DetailKey]*detailEntry),
	}
}

// Resolve returns the detail for key, fetching it on first use.
func (r *DetailResolver) Resolve(ctx context.Context, key DetailKey) (DetailView, error) {
	if strings.TrimSpace(key.HotelName) == "" {
		return DetailView{}, backend.ErrMissingHotel
	}
	if strings.TrimSpace(string(key.OrderID)) == "" {
		return DetailView{}, backend.ErrMissingOrderID
	}
	if v, ok := r.cached(key); ok {
		return v, nil
	}

	// The fetch is shared, so it must outlive the caller that started it.
	// The backend client's own timeout still bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	_, err, _ := r.group.Do(key.String(), func() (any, error) {
		if _, ok := r.cached(key); ok {
			return nil, nil
		}
		d, err := r.fetcher.GetOrderDetail(fetchCtx, key.Domain, key.OrderID, key.HotelName)
		if err != nil {
			r.metrics.Detail(key.Domain.Slug(), metrics.OutcomeFailed)
			r.log.Error("order detail fetch failed",
				zap.String("domain", key.Domain.Slug()),
				zap.String("order_id", string(key.OrderID)),
				zap.String("hotel", key.HotelName),
				zap.Bool("contract_violation", backend.IsContract(err)),
				zap.Error(err))
			return nil, err
		}
		r.metrics.Detail(key.Domain.Slug(), metrics.OutcomeLoaded)

		selected := d.Status
		if selected == "" {
			selected = enum.DetailStatusActive
		}
		r.mu.Lock()
		r.cache[key] = &detailEntry{detail: *d, selected: selected}
		r.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return DetailView{}, err
	}

	v, ok := r.cached(key)
	if !ok {
		// Invalidated while the fetch was in flight.
		return DetailView{}, ErrDetailNotLoaded
	}
	return v, nil
}

// SelectStatus changes the status shown for a loaded detail. The change is
// local display state only and is never sent to the backend: the backend
// has no status-update endpoint.
func (r *DetailResolver) SelectStatus(key DetailKey, status string) (DetailView, error) {
	if !enum.IsSelectableStatus(status) {
		return DetailView{}, ErrInvalidStatus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[key]
	if !ok {
		return DetailView{}, ErrDetailNotLoaded
	}
	e.selected = status
	return e.view(), nil
}

// InvalidateDomain drops every cached detail of domain so the next Resolve
// of any of its orders refetches.
func (r *DetailResolver) InvalidateDomain(domain enum.Domain) {
	r.mu.Lock()
	for key := range r.cache {
		if key.Domain == domain {
			delete(r.cache, key)
		}
	}
	r.mu.Unlock()
}

func (r *DetailResolver) cached(key DetailKey) (DetailView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cache[key]
	if !ok {
		return DetailView{}, false
	}
	return e.view(), true
}
