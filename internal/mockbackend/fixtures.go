package mockbackend

import (
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pricePtr(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

// DefaultFixtures is a small data set for one hotel. With legacy set, the
// outdoor feed uses the PENDING/ACCEPTED/DELIVERED status text of the
// earliest staff app build.
func DefaultFixtures(hotel string, legacy bool) Fixtures {
	room := []Record{
		{OrderID: "R-1001", Status: enum.StatusOrdered, RoomNumber: "204", TotalPrice: price("14.70")},
		{OrderID: "R-1002", Status: enum.StatusProcessing, RoomNumber: "118", TotalPrice: price("9.00")},
		{OrderID: "R-1003", Status: enum.StatusCompleted, RoomNumber: "305", TotalPrice: price("22.40")},
	}

	outdoor := []Record{
		{OrderID: "ORD001", Status: enum.StatusOrdered, PaymentMode: "Credit Card", TotalPrice: price("25.50")},
		{OrderID: "ORD002", Status: enum.StatusProcessing, PaymentMode: "Cash", TotalPrice: price("40.00")},
		{OrderID: "ORD003", Status: enum.StatusCompleted, PaymentMode: "PayPal", TotalPrice: price("15.30")},
	}
	if legacy {
		outdoor[0].Status = enum.LegacyStatusPending
		outdoor[1].Status = enum.LegacyStatusAccepted
		outdoor[2].Status = enum.LegacyStatusDelivered
	}

	burgerMeal := []Item{
		{
			ItemName:    "Burger",
			Quantity:    2,
			Price:       price("5.00"),
			Status:      enum.DetailStatusProcessing,
			RoomNumber:  "204",
			Time:        "2024-11-20 12:00 PM",
			Instruction: "No pickles on the burger.",
			OverallTax:  pricePtr("1.20"),
			TotalPrice:  pricePtr("14.70"),
		},
		{ItemName: "Fries", Quantity: 1, Price: price("2.50")},
		{ItemName: "Soda", Quantity: 1, Price: price("1.00")},
	}

	details := map[string][]Item{
		"R-1001": burgerMeal,
		"R-1002": {{ItemName: "Club Sandwich", Quantity: 1, Price: price("9.00"), Status: enum.DetailStatusProcessing, RoomNumber: "118"}},
		"R-1003": {},
		"ORD001": {{ItemName: "Pizza", Quantity: 1, Price: price("25.50"), Time: "2024-11-20 01:15 PM"}},
		"ORD002": {{ItemName: "Grilled Fish", Quantity: 2, Price: price("20.00"), Status: enum.DetailStatusComplete}},
		"ORD003": {{ItemName: "Ice Cream", Quantity: 3, Price: price("5.10"), Status: enum.DetailStatusCancel}},
	}

	return Fixtures{
		Room:    map[string][]Record{hotel: room},
		Outdoor: map[string][]Record{hotel: outdoor},
		Details: map[string]map[string][]Item{hotel: details},
	}
}
