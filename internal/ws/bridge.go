package ws

import (
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/feed"
	"github.com/hotelstaff/orderfeed/internal/order"
	"github.com/hotelstaff/orderfeed/internal/session"
	"go.uber.org/zap"
)

// Bridge returns a session hook that forwards every feed state change and the
// registration outcome to the session's hotel room.
func Bridge(hub *Hub, log *zap.Logger) func(*session.Session) {
	if log == nil {
		log = zap.NewNop()
	}
	return func(s *session.Session) {
		hotel := s.Hotel
		for _, d := range enum.Domains {
			store := s.Store(d)
			if store == nil {
				continue
			}
			vocab := store.Vocabulary()
			store.Subscribe(func(st feed.State) {
				publish(hub, log, hotel, EventFeedUpdated, feed.Render(st, vocab))
			})
		}
		s.OnRegistration(func(reg order.Registration) {
			publish(hub, log, hotel, EventNotificationUpdated, reg)
		})
	}
}

func publish(hub *Hub, log *zap.Logger, hotel, typ string, payload any) {
	event, err := NewEvent(typ, payload)
	if err != nil {
		log.Error("encoding websocket event failed", zap.String("type", typ), zap.Error(err))
		return
	}
	if !hub.BroadcastToHotel(hotel, event) {
		log.Warn("websocket broadcast queue full; event dropped", zap.String("type", typ), zap.String("hotel", hotel))
	}
}
