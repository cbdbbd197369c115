package booking

import (
	"context"
	"errors"
	"sync"

	"salonbook/internal/calendar"
	"salonbook/internal/cart"
	"salonbook/internal/schedule"
	"salonbook/internal/slots"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNotReady       = errors.New("date and time must be selected")
	ErrNoStylist      = errors.New("no stylist selected")
	ErrInvalidContact = errors.New("invalid contact details")

	// ErrSubmitInProgress is returned while the session's booking is being submitted.
	ErrSubmitInProgress = errors.New("booking submission already in progress")
)

// Flow composes the cart, availability, calendar and slot picker of one session.
type Flow struct {
	Cart     *cart.Cart
	Store    *schedule.Store
	Calendar *calendar.Selector
	Picker   *slots.Picker

	mu        sync.Mutex
	stylistID int64
}

// NewFlow wires the components of a flow.
func NewFlow(c *cart.Cart, store *schedule.Store, sel *calendar.Selector, picker *slots.Picker) *Flow {
	return &Flow{Cart: c, Store: store, Calendar: sel, Picker: picker}
}

// StylistID returns the stylist whose calendar is open.
func (f *Flow) StylistID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stylistID
}

// OpenCalendar opens the calendar for a stylist, loading availability when the
// stylist changed or the last load failed. An empty cart returns ErrEmptyCart.
func (f *Flow) OpenCalendar(ctx context.Context, stylistID int64) error {
	if f.Cart.Empty() {
		return ErrEmptyCart
	}
	if stylistID <= 0 {
		return ErrNoStylist
	}

	f.mu.Lock()
	switched := f.stylistID != 0 && f.stylistID != stylistID
	f.stylistID = stylistID
	f.mu.Unlock()

	if switched {
		f.Calendar.ClearSelection()
		f.Picker.Reset()
	}

	var loadErr error
	if f.Store.StylistID() != stylistID || !f.Store.Loaded() || f.Store.Err() != nil {
		loadErr = f.Store.Load(ctx, stylistID)
		if errors.Is(loadErr, schedule.ErrLoadInProgress) {
			loadErr = nil
		}
	}
	f.refreshPicker()
	return loadErr
}

// Reload refetches availability for the open stylist.
func (f *Flow) Reload(ctx context.Context) error {
	stylistID := f.StylistID()
	if stylistID == 0 {
		return ErrNoStylist
	}
	err := f.Store.Load(ctx, stylistID)
	if errors.Is(err, schedule.ErrLoadInProgress) {
		err = nil
	}
	f.refreshPicker()
	return err
}

// Grid renders the visible month against the loaded availability.
func (f *Flow) Grid() calendar.Month {
	return f.Calendar.Grid(f.Store)
}

// SelectDay selects a date and shows its slots. A different date clears the slot.
func (f *Flow) SelectDay(key string) (bool, error) {
	changed, err := f.Calendar.SelectDay(key)
	if err != nil {
		return false, err
	}
	f.refreshPicker()
	return changed, nil
}

// PickSlot chooses a slot on the selected date.
func (f *Flow) PickSlot(label string) (schedule.Slot, error) {
	if _, ok := f.Calendar.Selected(); !ok {
		return schedule.Slot{}, slots.ErrNoDate
	}
	return f.Picker.Pick(label)
}

// CanConfirm reports whether Confirm would succeed.
func (f *Flow) CanConfirm() bool {
	return !f.Cart.Empty() && f.Picker.CanConfirm()
}

// Confirm builds the draft from the current selection.
func (f *Flow) Confirm() (Draft, error) {
	items := f.Cart.Items()
	if len(items) == 0 {
		return Draft{}, ErrEmptyCart
	}
	date, ok := f.Calendar.Selected()
	if !ok {
		return Draft{}, ErrNotReady
	}
	slot, ok := f.Picker.Selected()
	if !ok || f.Picker.Date() != date {
		return Draft{}, ErrNotReady
	}
	stylistID := f.StylistID()
	if stylistID == 0 {
		return Draft{}, ErrNoStylist
	}
	return NewDraft(date, slot, stylistID, items), nil
}

// ResetSelection drops the date and slot and keeps the cart.
func (f *Flow) ResetSelection() {
	f.Calendar.ClearSelection()
	f.Picker.Reset()
}

func (f *Flow) refreshPicker() {
	date, ok := f.Calendar.Selected()
	if !ok {
		f.Picker.Reset()
		return
	}
	day, has := f.Store.Day(date)
	f.Picker.Show(date, day, has)
}
