// Package mockbackend serves fixture data over the remote order backend's
// HTTP contract, for local development and end-to-end tests.
package mockbackend

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Record is a list entry as the backend sends it.
type Record struct {
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	RoomNumber  string          `json:"room_number,omitempty"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PaymentMode string          `json:"payment_mode,omitempty"`
}

// Item is a detail line as the backend sends it. Header fields are only set
// on the first item of an order.
type Item struct {
	ItemName    string           `json:"item_name"`
	Quantity    int              `json:"quantity"`
	Price       decimal.Decimal  `json:"price"`
	Status      string           `json:"status,omitempty"`
	RoomNumber  string           `json:"room_number,omitempty"`
	Time        string           `json:"time,omitempty"`
	Instruction string           `json:"instruction,omitempty"`
	OverallTax  *decimal.Decimal `json:"overall_tax,omitempty"`
	TotalPrice  *decimal.Decimal `json:"total_price,omitempty"`
}

// Fixtures is the data served, keyed by hotel name and then order id.
type Fixtures struct {
	Room    map[string][]Record
	Outdoor map[string][]Record
	Details map[string]map[string][]Item
}

// Server is an http.Handler implementing the four backend endpoints.
type Server struct {
	fixtures Fixtures
	log      *zap.Logger
	router   chi.Router

	mu     sync.Mutex
	tokens map[string]string // push token -> hotel
}

func New(f Fixtures, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{fixtures: f, log: log, tokens: make(map[string]string)}

	r := chi.NewRouter()
	r.Get("/app/foods/orders", s.list(f.Room))
	r.Get("/app/foods/outdoor/orders", s.list(f.Outdoor))
	r.Post("/app/foods/orders/{id}", s.detail)
	r.Post("/app/foods/outdoor/orders/{id}", s.detail)
	r.Post("/save/expo/token", s.saveToken)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Tokens returns the registered push tokens and their hotels.
func (s *Server) Tokens() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.tokens))
	for k, v := range s.tokens {
		out[k] = v
	}
	return out
}

type envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (s *Server) list(byHotel map[string][]Record) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hotel := r.URL.Query().Get("hotel_name")
		records := byHotel[hotel]
		if records == nil {
			records = []Record{}
		}
		s.log.Debug("list orders", zap.String("path", r.URL.Path), zap.String("hotel", hotel), zap.Int("orders", len(records)))
		writeJSON(w, http.StatusOK, envelope{Status: true, Data: records})
	}
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HotelName string `json:"hotel_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}

	id := chi.URLParam(r, "id")
	items, ok := s.fixtures.Details[req.HotelName][id]
	if !ok {
		// No data field at all, like the real backend for unknown orders.
		writeJSON(w, http.StatusOK, envelope{Message: "Order not found"})
		return
	}
	if items == nil {
		items = []Item{}
	}
	writeJSON(w, http.StatusOK, envelope{Status: true, Data: items})
}

func (s *Server) saveToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExpoToken string `json:"expo_token"`
		HotelName string `json:"hotel_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ExpoToken) == "" || strings.TrimSpace(req.HotelName) == "" {
		writeJSON(w, http.StatusOK, envelope{Message: "expo_token and hotel_name are required"})
		return
	}

	s.mu.Lock()
	s.tokens[req.ExpoToken] = req.HotelName
	s.mu.Unlock()

	s.log.Info("push token saved", zap.String("hotel", req.HotelName))
	writeJSON(w, http.StatusOK, envelope{Status: true, Message: "Token saved"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
