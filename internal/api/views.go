package api

import (
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/booking"
	"salonbook/internal/calendar"
	"salonbook/internal/cart"
	"salonbook/internal/slots"
)

type sessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	Role      auth.Role `json:"role"`
	StylistID int64     `json:"stylist_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionView struct {
	SessionID  string        `json:"session_id"`
	Role       auth.Role     `json:"role"`
	StylistID  int64         `json:"stylist_id,omitempty"`
	State      booking.State `json:"state"`
	CartSize   int           `json:"cart_size"`
	CanConfirm bool          `json:"can_confirm"`
}

func newSessionView(sess *booking.Session) sessionView {
	return sessionView{
		SessionID:  sess.ID,
		Role:       sess.Role,
		StylistID:  sess.StylistID,
		State:      sess.State(),
		CartSize:   sess.Flow.Cart.Len(),
		CanConfirm: sess.Flow.CanConfirm(),
	}
}

type cartView struct {
	Items         []cart.Item `json:"items"`
	Count         int         `json:"count"`
	TotalPrice    string      `json:"total_price"`
	TotalDisplay  string      `json:"total_display"`
	TotalDuration int         `json:"total_duration"`
}

func newCartView(c *cart.Cart) cartView {
	items := c.Items()
	total := cart.TotalPrice(items)
	return cartView{
		Items:         items,
		Count:         len(items),
		TotalPrice:    total.StringFixed(2),
		TotalDisplay:  booking.FormatUSD(total),
		TotalDuration: cart.TotalDuration(items),
	}
}

type calendarView struct {
	StylistID int64          `json:"stylist_id"`
	Month     calendar.Month `json:"month"`
	Loading   bool           `json:"loading"`
	Error     string         `json:"error,omitempty"`
	State     booking.State  `json:"state"`
}

func newCalendarView(sess *booking.Session) calendarView {
	v := calendarView{
		StylistID: sess.Flow.StylistID(),
		Month:     sess.Flow.Grid(),
		Loading:   sess.Flow.Store.Loading(),
		State:     sess.State(),
	}
	if err := sess.Flow.Store.Err(); err != nil {
		v.Error = "could not load availability"
	}
	return v
}

type slotsView struct {
	Date       string          `json:"date,omitempty"`
	Sections   []slots.Section `json:"sections"`
	Selected   string          `json:"selected,omitempty"`
	CanConfirm bool            `json:"can_confirm"`
}

func newSlotsView(f *booking.Flow) slotsView {
	v := slotsView{
		Date:       f.Picker.Date(),
		Sections:   f.Picker.Sections(),
		CanConfirm: f.CanConfirm(),
	}
	if slot, ok := f.Picker.Selected(); ok {
		v.Selected = slot.Label
	}
	return v
}

type selectionView struct {
	Calendar calendarView `json:"calendar"`
	Slots    slotsView    `json:"slots"`
}

type draftView struct {
	Draft        booking.Draft `json:"draft"`
	Summary      string        `json:"summary"`
	TotalDisplay string        `json:"total_display"`
	State        booking.State `json:"state"`
}

func newDraftView(sess *booking.Session, d booking.Draft) draftView {
	return draftView{
		Draft:        d,
		Summary:      d.Summary(),
		TotalDisplay: booking.FormatUSD(d.TotalPrice),
		State:        sess.State(),
	}
}

type checkoutResponse struct {
	AppointmentID int64         `json:"appointment_id"`
	Draft         booking.Draft `json:"draft"`
	Summary       string        `json:"summary"`
	State         booking.State `json:"state"`
}
