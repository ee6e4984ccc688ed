package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/order"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListOrders fetches the order feed of one domain for a hotel:
// GET {base}/app/foods[/outdoor]/orders?hotel_name=X.
//
// A missing or non-array data field yields a *ContractError; callers decide
// whether that degrades to an empty feed. Elements that do not decode as an
// order are skipped and logged, the rest of the feed is kept.
func (c *Client) ListOrders(ctx context.Context, domain enum.Domain, hotel string) ([]order.Record, error) {
	op := "list " + domain.Slug() + " orders"
	if strings.TrimSpace(hotel) == "" {
		return nil, ErrMissingHotel
	}

	env, err := c.do(ctx, op, http.MethodGet, listPath(domain), url.Values{"hotel_name": {hotel}}, nil)
	if err != nil {
		return nil, err
	}
	items, err := dataArray(op, env)
	if err != nil {
		return nil, err
	}

	records := make([]order.Record, 0, len(items))
	for i, raw := range items {
		var r order.Record
		if err := json.Unmarshal(raw, &r); err != nil {
			c.log.Warn("skipping malformed order in list response",
				zap.String("op", op),
				zap.String("hotel", hotel),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		r.Domain = domain
		r.HotelName = hotel
		if domain != enum.DomainRoom {
			r.RoomNumber = ""
		}
		records = append(records, r)
	}
	return records, nil
}

// lineItem is one element of a detail response. The first element also
// carries the order-level header fields.
type lineItem struct {
	ItemName    string              `json:"item_name"`
	Quantity    json.Number         `json:"quantity"`
	Price       decimal.Decimal     `json:"price"`
	Status      string              `json:"status"`
	RoomNumber  order.Room          `json:"room_number"`
	Time        string              `json:"time"`
	Instruction string              `json:"instruction"`
	OverallTax  decimal.NullDecimal `json:"overall_tax"`
	TotalPrice  decimal.NullDecimal `json:"total_price"`
}

// GetOrderDetail fetches the line items of one order:
// POST {base}/app/foods[/outdoor]/orders/{id} with {"hotel_name": X}.
// Header fields are lifted from data[0]; an empty data array is a valid
// order with no items.
func (c *Client) GetOrderDetail(ctx context.Context, domain enum.Domain, orderID order.ID, hotel string) (*order.Detail, error) {
	op := "get " + domain.Slug() + " order detail"
	if strings.TrimSpace(hotel) == "" {
		return nil, ErrMissingHotel
	}
	if strings.TrimSpace(string(orderID)) == "" {
		return nil, ErrMissingOrderID
	}

	body := map[string]string{"hotel_name": hotel}
	env, err := c.do(ctx, op, http.MethodPost, detailPath(domain, string(orderID)), nil, body)
	if err != nil {
		return nil, err
	}
	raws, err := dataArray(op, env)
	if err != nil {
		return nil, err
	}

	d := &order.Detail{
		Domain:    domain,
		ID:        orderID,
		HotelName: hotel,
		Items:     make([]order.LineItem, 0, len(raws)),
	}
	for i, raw := range raws {
		var li lineItem
		if err := json.Unmarshal(raw, &li); err != nil {
			return nil, &ContractError{Op: op, Reason: fmt.Sprintf("data[%d]: %v", i, err)}
		}
		qty, err := quantity(li.Quantity)
		if err != nil {
			return nil, &ContractError{Op: op, Reason: fmt.Sprintf("data[%d].quantity: %v", i, err)}
		}
		if i == 0 {
			d.Status = li.Status
			d.RoomNumber = li.RoomNumber
			d.Time = li.Time
			d.Instruction = li.Instruction
			d.OverallTax = li.OverallTax
			d.TotalPrice = li.TotalPrice
		}
		d.Items = append(d.Items, order.LineItem{
			Name:      li.ItemName,
			Quantity:  qty,
			UnitPrice: li.Price,
		})
	}
	return d, nil
}

func quantity(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	v, err := n.Int64()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative quantity %d", v)
	}
	return int(v), nil
}
