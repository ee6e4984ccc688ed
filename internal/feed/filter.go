package feed

import (
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/order"
)

// Filter returns the records whose status equals the vocabulary's label for
// tab, in their original order. Unknown statuses never match.
func Filter(records []order.Record, tab enum.Tab, vocab enum.Vocabulary) []order.Record {
	label := vocab.Label(tab)
	out := make([]order.Record, 0, len(records))
	if label == "" {
		return out
	}
	for _, r := range records {
		if r.Status == label {
			out = append(out, r)
		}
	}
	return out
}
