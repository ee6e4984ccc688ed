// Package order holds the normalized representation of room and outdoor
// orders as received from the order-management backend.
package order

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/shopspring/decimal"
)

// ID is an opaque order identifier. The backend sends it either as a JSON
// string or a JSON number; both decode to the same text.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := flexibleText(b)
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	*id = ID(s)
	return nil
}

// Room is a room number, also sent as either a string or a number.
type Room string

func (r *Room) UnmarshalJSON(b []byte) error {
	s, err := flexibleText(b)
	if err != nil {
		return fmt.Errorf("room number: %w", err)
	}
	*r = Room(s)
	return nil
}

// flexibleText accepts a JSON string, number or null and returns its text.
func flexibleText(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", b)
	}
	return n.String(), nil
}

// Record is a list-level order summary.
type Record struct {
	Domain      enum.Domain     `json:"domain"`
	ID          ID              `json:"order_id"`
	HotelName   string          `json:"hotel_name"`
	Status      string          `json:"status"`
	RoomNumber  Room            `json:"room_number,omitempty"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PaymentMode string          `json:"payment_mode,omitempty"`
}

// LineItem is a single item on an order.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Detail is the line-item level refinement of a Record. ID is the join key.
type Detail struct {
	Domain      enum.Domain         `json:"domain"`
	ID          ID                  `json:"order_id"`
	HotelName   string              `json:"hotel_name"`
	Items       []LineItem          `json:"items"`
	Instruction string              `json:"instruction,omitempty"`
	Time        string              `json:"time,omitempty"`
	Status      string              `json:"status"`
	RoomNumber  Room                `json:"room_number,omitempty"`
	OverallTax  decimal.NullDecimal `json:"overall_tax"`
	TotalPrice  decimal.NullDecimal `json:"total_price"`
}

// Registration is the outcome of the push-token registration workflow.
type Registration struct {
	PermissionGranted bool   `json:"permission_granted"`
	Token             string `json:"token,omitempty"`
	Message           string `json:"message"`
	Success           bool   `json:"success"`
	Done              bool   `json:"done"`
}
