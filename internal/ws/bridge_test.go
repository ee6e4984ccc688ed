package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/feed"
	"github.com/hotelstaff/orderfeed/internal/order"
	"github.com/hotelstaff/orderfeed/internal/session"
)

type fixedBackend struct{}

func (fixedBackend) ListOrders(ctx context.Context, domain enum.Domain, hotel string) ([]order.Record, error) {
	return []order.Record{{Domain: domain, ID: "O1", HotelName: hotel, Status: enum.StatusOrdered}}, nil
}

func (fixedBackend) GetOrderDetail(ctx context.Context, domain enum.Domain, id order.ID, hotel string) (*order.Detail, error) {
	return &order.Detail{Domain: domain, ID: id, HotelName: hotel}, nil
}

func (fixedBackend) SaveExpoToken(ctx context.Context, token, hotel string) (string, error) {
	return "saved", nil
}

func TestBridgeForwardsSessionEvents(t *testing.T) {
	hub := runHub(t)
	client := mockClient(hub, "GrandHotel")
	hub.Register(client)

	m := session.NewManager(fixedBackend{}, nil, nil, nil)
	m.OnOpen(Bridge(hub, nil))
	s, err := m.Open("GrandHotel", session.StaticDevice{Granted: true, Token: "tok"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer m.Shutdown()
	if err := s.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	loaded := map[enum.Domain]bool{}
	var registration *order.Registration
	timeout := time.After(time.Second)
	for len(loaded) < 2 || registration == nil {
		select {
		case msg := <-client.send:
			var ev Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			switch ev.Type {
			case EventFeedUpdated:
				var v feed.View
				if err := json.Unmarshal(ev.Payload, &v); err != nil {
					t.Fatalf("unmarshal view: %v", err)
				}
				if v.Kind == feed.ViewList {
					loaded[v.Domain] = true
				}
			case EventNotificationUpdated:
				var reg order.Registration
				if err := json.Unmarshal(ev.Payload, &reg); err != nil {
					t.Fatalf("unmarshal registration: %v", err)
				}
				registration = &reg
			}
		case <-timeout:
			t.Fatalf("missing events: loaded=%v registration=%v", loaded, registration)
		}
	}

	if !registration.Success {
		t.Errorf("expected successful registration, got %+v", registration)
	}
}
