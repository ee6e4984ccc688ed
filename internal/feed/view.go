package feed

import (
	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/hotelstaff/orderfeed/internal/order"
)

// ViewKind is what a list screen shows. Exactly one applies at a time.
type ViewKind string

const (
	ViewLoading ViewKind = "loading"
	ViewList    ViewKind = "list"
	ViewEmpty   ViewKind = "empty"
	ViewFailed  ViewKind = "failed"
)

// FailureMessage is the generic text shown for any failed list fetch.
const FailureMessage = "Unable to load orders. Please try again."

// View is the render-ready state of a feed for its active tab.
type View struct {
	Domain    enum.Domain    `json:"domain"`
	HotelName string         `json:"hotel_name"`
	Kind      ViewKind       `json:"state"`
	Tab       enum.Tab       `json:"tab"`
	Orders    []order.Record `json:"orders"`
	Message   string         `json:"message,omitempty"`
}

// EmptyMessage is the empty-state text for a domain.
func EmptyMessage(d enum.Domain) string {
	if d == enum.DomainOutdoor {
		return "No Outdoor Orders Available"
	}
	return "No Room Orders Available"
}

// Render derives the view of st for its active tab. Idle renders as loading:
// a store is created immediately before its first fetch.
func Render(st State, vocab enum.Vocabulary) View {
	v := View{
		Domain:    st.Domain,
		HotelName: st.HotelName,
		Tab:       st.ActiveTab,
		Orders:    []order.Record{},
	}
	switch st.Status {
	case Idle, Loading:
		v.Kind = ViewLoading
	case Failed:
		v.Kind = ViewFailed
		v.Message = FailureMessage
	default:
		v.Orders = Filter(st.Records, st.ActiveTab, vocab)
		if len(v.Orders) == 0 {
			v.Kind = ViewEmpty
			v.Message = EmptyMessage(st.Domain)
		} else {
			v.Kind = ViewList
		}
	}
	return v
}

// View renders the store's current state.
func (s *Store) View() View {
	return Render(s.Snapshot(), s.vocab)
}
