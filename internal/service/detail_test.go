package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hotelstaff/orderfeed/internal/backend"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDetailFetcher struct {
	getFn func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error)
	calls atomic.Int32
}

func (m *mockDetailFetcher) GetOrderDetail(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
	m.calls.Add(1)
	return m.getFn(ctx, domain, orderID, hotel)
}

func burgerDetail(status string) *order.Detail {
	return &order.Detail{
		Domain:    enum.DomainOutdoor,
		ID:        "O1",
		HotelName: "GrandHotel",
		Items: []order.LineItem{
			{Name: "Burger", Quantity: 2, UnitPrice: decimal.RequireFromString("5.00")},
		},
		Status:     status,
		OverallTax: decimal.NewNullDecimal(decimal.RequireFromString("1.20")),
		TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("11.20")),
	}
}

var outdoorKey = DetailKey{Domain: enum.DomainOutdoor, OrderID: "O1", HotelName: "GrandHotel"}

func TestResolveProcessingRendersAmber(t *testing.T) {
	fetcher := &mockDetailFetcher{getFn: func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
		assert.Equal(t, enum.DomainOutdoor, domain)
		assert.Equal(t, order.ID("O1"), orderID)
		assert.Equal(t, "GrandHotel", hotel)
		return burgerDetail(enum.DetailStatusProcessing), nil
	}}
	r := NewDetailResolver(fetcher, nil, nil)

	v, err := r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)

	assert.Equal(t, enum.DetailStatusProcessing, v.SelectedStatus)
	assert.Equal(t, StatusStyle{Color: "#FFA500", Weight: "bold"}, v.Style)
	assert.True(t, v.ShowTotals)
	require.Len(t, v.Detail.Items, 1)
	assert.Equal(t, "Burger", v.Detail.Items[0].Name)
}

func TestResolveEmptyDataDefaultsToActive(t *testing.T) {
	fetcher := &mockDetailFetcher{getFn: func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
		return &order.Detail{Domain: domain, ID: orderID, HotelName: hotel}, nil
	}}
	r := NewDetailResolver(fetcher, nil, nil)

	v, err := r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)

	assert.NotNil(t, v.Detail.Items)
	assert.Empty(t, v.Detail.Items)
	assert.Equal(t, enum.DetailStatusActive, v.SelectedStatus)
	assert.Equal(t, StatusStyle{Color: "#000", Weight: "normal"}, v.Style)
	assert.False(t, v.ShowTotals)
}

func TestResolveFailureIsNotCached(t *testing.T) {
	fail := true
	fetcher := &mockDetailFetcher{getFn: func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
		if fail {
			return nil, &backend.ContractError{Op: "get order detail", Reason: `missing "data"`}
		}
		return burgerDetail(""), nil
	}}
	r := NewDetailResolver(fetcher, nil, nil)

	_, err := r.Resolve(context.Background(), outdoorKey)
	assert.True(t, backend.IsContract(err))

	fail = false
	_, err = r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestResolveCachesPerKey(t *testing.T) {
	fetcher := &mockDetailFetcher{getFn: func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
		return burgerDetail(""), nil
	}}
	r := NewDetailResolver(fetcher, nil, nil)

	_, err := r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	roomKey := outdoorKey
	roomKey.Domain = enum.DomainRoom
	_, err = r.Resolve(context.Background(), roomKey)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())

	r.InvalidateDomain(enum.DomainOutdoor)
	_, err = r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)
	assert.Equal(t, int32(3), fetcher.calls.Load())

	// Room entries survive an outdoor invalidation.
	_, err = r.Resolve(context.Background(), roomKey)
	require.NoError(t, err)
	assert.Equal(t, int32(3), fetcher.calls.Load())
}

func TestResolveSurvivesFirstCallerCancelling(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &mockDetailFetcher{getFn: func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
		<-gate
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return burgerDetail(enum.DetailStatusProcessing), nil
	}}
	r := NewDetailResolver(fetcher, nil, nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(first, outdoorKey)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), outdoorKey)
		secondErr <- err
	}()

	cancel()
	close(gate)
	require.NoError(t, <-firstErr)
	require.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestResolveConcurrentCallersShareOneFetch(t *testing.T) {
	gate := make(chan struct{})
	fetcher := &mockDetailFetcher{getFn: func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
		<-gate
		return burgerDetail(enum.DetailStatusComplete), nil
	}}
	r := NewDetailResolver(fetcher, nil, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), outdoorKey)
			errs <- err
		}()
	}
	close(gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestResolveConfigErrorsMakeNoCall(t *testing.T) {
	fetcher := &mockDetailFetcher{}
	r := NewDetailResolver(fetcher, nil, nil)

	_, err := r.Resolve(context.Background(), DetailKey{Domain: enum.DomainRoom, OrderID: "O1"})
	assert.ErrorIs(t, err, backend.ErrMissingHotel)
	_, err = r.Resolve(context.Background(), DetailKey{Domain: enum.DomainRoom, HotelName: "GrandHotel"})
	assert.ErrorIs(t, err, backend.ErrMissingOrderID)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestSelectStatusIsLocalOnly(t *testing.T) {
	fetcher := &mockDetailFetcher{getFn: func(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
		return burgerDetail(enum.DetailStatusProcessing), nil
	}}
	r := NewDetailResolver(fetcher, nil, nil)

	_, err := r.SelectStatus(outdoorKey, enum.DetailStatusComplete)
	assert.ErrorIs(t, err, ErrDetailNotLoaded)

	_, err = r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)

	_, err = r.SelectStatus(outdoorKey, "SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	v, err := r.SelectStatus(outdoorKey, enum.DetailStatusComplete)
	require.NoError(t, err)
	assert.Equal(t, "#26a318", v.Style.Color)
	assert.Equal(t, enum.DetailStatusProcessing, v.Detail.Status)

	v, err = r.Resolve(context.Background(), outdoorKey)
	require.NoError(t, err)
	assert.Equal(t, enum.DetailStatusComplete, v.SelectedStatus)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestStatusStyleFor(t *testing.T) {
	tests := []struct {
		status string
		want   StatusStyle
	}{
		{enum.DetailStatusProcessing, StatusStyle{"#FFA500", "bold"}},
		{enum.DetailStatusComplete, StatusStyle{"#26a318", "bold"}},
		{enum.DetailStatusCancel, StatusStyle{"#FF6347", "bold"}},
		{enum.DetailStatusActive, StatusStyle{"#000", "normal"}},
		{"", StatusStyle{"#000", "normal"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusStyleFor(tt.status), tt.status)
	}
}
