package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonbook/internal/booking"
	"salonbook/internal/catalog"
	"salonbook/internal/slots"
)

type addItemRequest struct {
	ServiceID catalog.ID `json:"service_id" validate:"required"`
}

type openCalendarRequest struct {
	StylistID int64 `json:"stylist_id" validate:"gte=0"`
}

type selectDayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type selectSlotRequest struct {
	Time string `json:"time" validate:"required,max=16"`
}

// GET /api/services
func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.catalog.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list services")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// GET /api/services/{id}
func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	svc, err := s.catalog.Get(r.Context(), catalog.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// GET /api/cart
func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, newCartView(sess.Flow.Cart))
}

// POST /api/cart/items
func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	var req addItemRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	added, err := s.booking.AddService(r.Context(), sess, req.ServiceID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, newCartView(sess.Flow.Cart))
}

// DELETE /api/cart/items/{id}
func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if !s.booking.RemoveService(sess, catalog.ID(chi.URLParam(r, "id"))) {
		writeError(w, http.StatusNotFound, "service is not in the cart")
		return
	}
	writeJSON(w, http.StatusOK, newCartView(sess.Flow.Cart))
}

// DELETE /api/cart
func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	s.booking.ClearCart(sess)
	writeJSON(w, http.StatusOK, newCartView(sess.Flow.Cart))
}

// handleOpenCalendar opens date selection. Load failures still open the
// calendar and are reported in the view.
// POST /api/calendar/open
func (s *Server) handleOpenCalendar(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	var req openCalendarRequest
	if !s.decodeOptionalJSON(w, r, &req) {
		return
	}

	err := s.booking.OpenCalendar(r.Context(), sess, req.StylistID)
	if errors.Is(err, booking.ErrEmptyCart) || errors.Is(err, booking.ErrNoStylist) {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCalendarView(sess))
}

// GET /api/calendar?month=YYYY-MM
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.calendarSession(w, r)
	if !ok {
		return
	}
	if month := r.URL.Query().Get("month"); month != "" {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month format; expected YYYY-MM")
			return
		}
		sess.Flow.Calendar.ShowMonth(t)
	}
	writeJSON(w, http.StatusOK, newCalendarView(sess))
}

// POST /api/calendar/prev
func (s *Server) handleCalendarPrev(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.calendarSession(w, r)
	if !ok {
		return
	}
	sess.Flow.Calendar.PrevMonth()
	writeJSON(w, http.StatusOK, newCalendarView(sess))
}

// POST /api/calendar/next
func (s *Server) handleCalendarNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.calendarSession(w, r)
	if !ok {
		return
	}
	sess.Flow.Calendar.NextMonth()
	writeJSON(w, http.StatusOK, newCalendarView(sess))
}

// POST /api/calendar/reload
func (s *Server) handleReloadCalendar(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.calendarSession(w, r)
	if !ok {
		return
	}
	if err := sess.Flow.Reload(r.Context()); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("reload availability")
	}
	writeJSON(w, http.StatusOK, newCalendarView(sess))
}

// POST /api/calendar/select
func (s *Server) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	var req selectDayRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if _, err := s.booking.SelectDay(sess, req.Date); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionView{
		Calendar: newCalendarView(sess),
		Slots:    newSlotsView(sess.Flow),
	})
}

// GET /api/slots
func (s *Server) handleGetSlots(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.calendarSession(w, r)
	if !ok {
		return
	}
	if _, selected := sess.Flow.Calendar.Selected(); !selected {
		writeDomainError(w, slots.ErrNoDate)
		return
	}
	writeJSON(w, http.StatusOK, newSlotsView(sess.Flow))
}

// POST /api/slots/select
func (s *Server) handleSelectSlot(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	var req selectSlotRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if _, err := s.booking.PickSlot(sess, req.Time); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSlotsView(sess.Flow))
}

// POST /api/booking/confirm
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	draft, err := s.booking.Confirm(sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDraftView(sess, draft))
}

// handleCheckout collects the contact details and creates the appointment.
// POST /api/booking/checkout
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	var contact booking.Contact
	if !s.decodeJSON(w, r, &contact) {
		return
	}
	if sess.State() == booking.StateConfirming {
		_ = s.booking.RequestContact(sess)
	}

	id, draft, err := s.booking.Submit(r.Context(), sess, contact)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{
		AppointmentID: id,
		Draft:         draft,
		Summary:       draft.Summary(),
		State:         sess.State(),
	})
}

// POST /api/booking/back
func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	s.booking.Back(sess)
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

// POST /api/booking/cancel
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	s.booking.Cancel(sess)
	writeJSON(w, http.StatusOK, newSessionView(sess))
}

// calendarSession guards calendar views: an empty cart redirects to service
// selection and a calendar must have been opened.
func (s *Server) calendarSession(w http.ResponseWriter, r *http.Request) (*booking.Session, bool) {
	sess := sessionFromContext(r.Context())
	if sess.Flow.Cart.Empty() {
		writeEmptyCart(w)
		return nil, false
	}
	if sess.Flow.StylistID() == 0 {
		writeDomainError(w, booking.ErrNoStylist)
		return nil, false
	}
	return sess, true
}

// decodeOptionalJSON is decodeJSON for requests whose body may be empty.
func (s *Server) decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return true
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}
