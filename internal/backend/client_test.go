package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hotelstaff/orderfeed/internal/backend"
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// newTestClient starts a fake backend mounted under /dashboard, like the
// production base URL.
func newTestClient(t *testing.T, h http.HandlerFunc) *backend.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/dashboard/", http.StripPrefix("/dashboard", h))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := backend.NewClient(srv.URL+"/dashboard/", 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	_, err := backend.NewClient("", time.Second)
	assert.Error(t, err)

	_, err = backend.NewClient("ftp://example.com", time.Second)
	assert.Error(t, err)

	_, err = backend.NewClient("https://qr.nukadscan.com/dashboard", 0)
	assert.NoError(t, err)
}

func TestListOrdersRoom(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/app/foods/orders", r.URL.Path)
		assert.Equal(t, "Grand Hotel & Spa", r.URL.Query().Get("hotel_name"))
		w.Write([]byte(`{"status":true,"data":[
			{"order_id":"O1","status":"Ordered","room_number":"204","total_price":42.5},
			{"order_id":2,"status":"Completed","room_number":101,"total_price":"10"}
		]}`))
	})

	recs, err := c.ListOrders(context.Background(), enum.DomainRoom, "Grand Hotel & Spa")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, order.ID("O1"), recs[0].ID)
	assert.Equal(t, enum.DomainRoom, recs[0].Domain)
	assert.Equal(t, "Grand Hotel & Spa", recs[0].HotelName)
	assert.Equal(t, order.Room("204"), recs[0].RoomNumber)
	assert.Equal(t, "42.5", recs[0].TotalPrice.String())
	assert.Equal(t, order.ID("2"), recs[1].ID)
}

func TestListOrdersOutdoorUsesOutdoorPathAndDropsRoom(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/app/foods/outdoor/orders", r.URL.Path)
		w.Write([]byte(`{"data":[{"order_id":"X9","status":"Ordered","room_number":"1","payment_mode":"Cash"}]}`))
	})

	recs, err := c.ListOrders(context.Background(), enum.DomainOutdoor, "GrandHotel")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, enum.DomainOutdoor, recs[0].Domain)
	assert.Empty(t, recs[0].RoomNumber)
	assert.Equal(t, "Cash", recs[0].PaymentMode)
}

func TestListOrdersEmptyHotelMakesNoCall(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.ListOrders(context.Background(), enum.DomainRoom, "  ")
	assert.ErrorIs(t, err, backend.ErrMissingHotel)
	assert.True(t, backend.IsConfig(err))
	assert.False(t, called)
}

func TestListOrdersContractViolations(t *testing.T) {
	bodies := map[string]string{
		"missing data": `{"status":true}`,
		"null data":    `{"status":true,"data":null}`,
		"string data":  `{"data":"not-an-array"}`,
		"object data":  `{"data":{"order_id":"O1"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(body)) })
			_, err := c.ListOrders(context.Background(), enum.DomainRoom, "GrandHotel")
			require.Error(t, err)
			assert.True(t, backend.IsContract(err), err)
			assert.False(t, backend.IsTransport(err))
		})
	}
}

func TestListOrdersSkipsMalformedElements(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mux := http.NewServeMux()
	mux.HandleFunc("/app/foods/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":[
			{"order_id":"O1","status":"Ordered","room_number":"204","total_price":"12.50"},
			{"order_id":"O2","status":"Ordered","total_price":""},
			7,
			{"order_id":"O3","status":"Completed","room_number":101,"total_price":8}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := backend.NewClient(srv.URL, time.Second, backend.WithLogger(zap.New(core)))
	require.NoError(t, err)

	recs, err := c.ListOrders(context.Background(), enum.DomainRoom, "GrandHotel")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, order.ID("O1"), recs[0].ID)
	assert.Equal(t, order.ID("O3"), recs[1].ID)

	skipped := logs.FilterMessage("skipping malformed order in list response").All()
	require.Len(t, skipped, 2)
	assert.Equal(t, int64(1), skipped[0].ContextMap()["index"])
	assert.Equal(t, int64(2), skipped[1].ContextMap()["index"])
}

func TestListOrdersTransportFailures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		})
		_, err := c.ListOrders(context.Background(), enum.DomainRoom, "GrandHotel")
		var te *backend.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	})

	t.Run("not json", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) })
		_, err := c.ListOrders(context.Background(), enum.DomainRoom, "GrandHotel")
		assert.True(t, backend.IsTransport(err), err)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		c, err := backend.NewClient(url, time.Second)
		require.NoError(t, err)
		_, err = c.ListOrders(context.Background(), enum.DomainRoom, "GrandHotel")
		assert.True(t, backend.IsTransport(err), err)
	})

	t.Run("canceled", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.ListOrders(ctx, enum.DomainRoom, "GrandHotel")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGetOrderDetailLiftsHeaderFromFirstItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/app/foods/outdoor/orders/O1", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"hotel_name": "GrandHotel"}, body)

		w.Write([]byte(`{"status":true,"data":[
			{"item_name":"Burger","quantity":2,"price":5.0,"status":"PROCESSING","room_number":"204",
			 "time":"2024-11-20 12:00 PM","overall_tax":"1.20","total_price":"13.70","instruction":"No pickles"},
			{"item_name":"Fries","quantity":"1","price":"2.50"}
		]}`))
	})

	d, err := c.GetOrderDetail(context.Background(), enum.DomainOutdoor, "O1", "GrandHotel")
	require.NoError(t, err)

	assert.Equal(t, order.ID("O1"), d.ID)
	assert.Equal(t, "PROCESSING", d.Status)
	assert.Equal(t, order.Room("204"), d.RoomNumber)
	assert.Equal(t, "2024-11-20 12:00 PM", d.Time)
	assert.Equal(t, "No pickles", d.Instruction)
	require.True(t, d.OverallTax.Valid)
	assert.Equal(t, "1.2", d.OverallTax.Decimal.String())
	assert.Equal(t, "13.7", d.TotalPrice.Decimal.String())

	require.Len(t, d.Items, 2)
	assert.Equal(t, "Burger", d.Items[0].Name)
	assert.Equal(t, 2, d.Items[0].Quantity)
	assert.Equal(t, "5", d.Items[0].UnitPrice.String())
	assert.Equal(t, 1, d.Items[1].Quantity)
	assert.Equal(t, "2.5", d.Items[1].UnitPrice.String())
}

func TestGetOrderDetailEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/app/foods/orders/O1", r.URL.Path)
		w.Write([]byte(`{"status":true,"data":[]}`))
	})

	d, err := c.GetOrderDetail(context.Background(), enum.DomainRoom, "O1", "GrandHotel")
	require.NoError(t, err)
	assert.Empty(t, d.Items)
	assert.False(t, d.TotalPrice.Valid)
}

func TestGetOrderDetailMissingData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"not found"}`))
	})

	_, err := c.GetOrderDetail(context.Background(), enum.DomainRoom, "O1", "GrandHotel")
	assert.True(t, backend.IsContract(err), err)
}

func TestGetOrderDetailRejectsBadQuantity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"item_name":"Soup","quantity":1.5}]}`))
	})

	_, err := c.GetOrderDetail(context.Background(), enum.DomainRoom, "O1", "GrandHotel")
	assert.True(t, backend.IsContract(err), err)
}

func TestGetOrderDetailConfigErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.GetOrderDetail(context.Background(), enum.DomainRoom, "O1", "")
	assert.ErrorIs(t, err, backend.ErrMissingHotel)
	_, err = c.GetOrderDetail(context.Background(), enum.DomainRoom, "", "GrandHotel")
	assert.ErrorIs(t, err, backend.ErrMissingOrderID)
}

func TestSaveExpoToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/save/expo/token", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"expo_token":"ExponentPushToken[abc]","hotel_name":"GrandHotel"}`, string(b))
		w.Write([]byte(`{"status":true,"message":"Token saved"}`))
	})

	msg, err := c.SaveExpoToken(context.Background(), "ExponentPushToken[abc]", "GrandHotel")
	require.NoError(t, err)
	assert.Equal(t, "Token saved", msg)
}

func TestSaveExpoTokenRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"unknown hotel"}`))
	})

	msg, err := c.SaveExpoToken(context.Background(), "tok", "Nowhere")
	assert.ErrorIs(t, err, backend.ErrRejected)
	assert.Equal(t, "unknown hotel", msg)
}

func TestSaveExpoTokenRequiresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.SaveExpoToken(context.Background(), "", "GrandHotel")
	assert.ErrorIs(t, err, backend.ErrMissingToken)
}
