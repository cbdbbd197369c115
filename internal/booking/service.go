package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"salonbook/internal/catalog"
	"salonbook/internal/events"
	"salonbook/internal/metrics"
	"salonbook/internal/schedule"
)

// Contact is the customer data collected at checkout.
type Contact struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
}

// Checkout creates the appointment for a confirmed draft.
type Checkout interface {
	Submit(ctx context.Context, draft Draft, contact Contact) (int64, error)
}

// Service applies user actions to sessions and keeps their state machine in step.
type Service struct {
	sessions       *SessionStore
	fsm            *FSM
	checkout       Checkout
	bus            *events.Bus
	validate       *validator.Validate
	logger         zerolog.Logger
	defaultStylist int64
}

// NewService wires the booking service.
func NewService(sessions *SessionStore, checkout Checkout, bus *events.Bus, validate *validator.Validate, logger *zerolog.Logger, defaultStylist int64) *Service {
	if validate == nil {
		validate = validator.New()
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "booking").Logger()
	}
	return &Service{
		sessions:       sessions,
		fsm:            NewFSM(),
		checkout:       checkout,
		bus:            bus,
		validate:       validate,
		logger:         l,
		defaultStylist: defaultStylist,
	}
}

// Sessions exposes the session store.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// AddService puts a service into the session's cart.
func (s *Service) AddService(ctx context.Context, sess *Session, id catalog.ID) (bool, error) {
	added, err := sess.Flow.Cart.Add(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Str("service_id", id.String()).Msg("add to cart failed")
		return false, err
	}
	if added {
		s.publish(events.TypeCartItemAdded, sess, map[string]any{"service_id": id})
	}
	return added, nil
}

// RemoveService drops a service. Emptying the cart ends date selection.
func (s *Service) RemoveService(sess *Session, id catalog.ID) bool {
	removed := sess.Flow.Cart.Remove(id)
	if !removed {
		return false
	}
	s.publish(events.TypeCartItemRemoved, sess, map[string]any{"service_id": id})
	s.fallbackIfEmpty(sess)
	return true
}

// ClearCart empties the cart and ends date selection.
func (s *Service) ClearCart(sess *Session) {
	sess.Flow.Cart.Clear()
	s.publish(events.TypeCartCleared, sess, nil)
	s.fallbackIfEmpty(sess)
}

// OpenCalendar moves the session to date selection for a stylist. stylistID 0
// means the default stylist. With an empty cart the session stays in browsing
// and ErrEmptyCart is returned. A failed availability load still opens the
// calendar; the error is returned for display.
func (s *Service) OpenCalendar(ctx context.Context, sess *Session, stylistID int64) error {
	if stylistID <= 0 {
		stylistID = s.defaultStylist
	}
	if sess.Flow.Cart.Empty() {
		sess.SetState(StateBrowsing)
		return ErrEmptyCart
	}

	switch sess.State() {
	case StateComplete, StateCanceled:
		s.fsm.Transition(sess, StateBrowsing)
	}

	err := sess.Flow.OpenCalendar(ctx, stylistID)
	if errors.Is(err, ErrNoStylist) {
		return err
	}
	if sess.State() == StateBrowsing {
		s.fsm.Transition(sess, StateChoosingDate)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Int64("stylist_id", stylistID).Msg("open calendar")
	}
	return err
}

// SelectDay picks a date and moves to time selection.
func (s *Service) SelectDay(sess *Session, key string) (bool, error) {
	if err := s.requireCalendar(sess); err != nil {
		return false, err
	}
	changed, err := sess.Flow.SelectDay(key)
	if err != nil {
		return false, err
	}
	s.fsm.Transition(sess, StateChoosingTime)
	return changed, nil
}

// PickSlot picks a time on the selected date.
func (s *Service) PickSlot(sess *Session, label string) (schedule.Slot, error) {
	if err := s.requireCalendar(sess); err != nil {
		return schedule.Slot{}, err
	}
	slot, err := sess.Flow.PickSlot(label)
	if err != nil {
		return schedule.Slot{}, err
	}
	if sess.State() == StateConfirming {
		s.fsm.Transition(sess, StateChoosingTime)
	}
	return slot, nil
}

// Confirm builds the draft and moves to the confirmation step.
func (s *Service) Confirm(sess *Session) (Draft, error) {
	draft, err := sess.Flow.Confirm()
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			s.fallbackIfEmpty(sess)
		}
		return Draft{}, err
	}
	if sess.State() != StateAwaitingContact {
		s.fsm.Transition(sess, StateConfirming)
	}
	metrics.IncBooking("confirmed")
	s.publish(events.TypeBookingConfirmed, sess, draft)
	return draft, nil
}

// RequestContact moves a confirmed session to contact collection.
func (s *Service) RequestContact(sess *Session) error {
	if !s.fsm.Transition(sess, StateAwaitingContact) {
		return fmt.Errorf("%w: cannot collect contact from %s", ErrNotReady, sess.State())
	}
	return nil
}

// Submit validates the contact, hands the draft to checkout and, on success,
// clears the cart and the selection. A second Submit on the same session
// returns ErrSubmitInProgress until the first one settles.
func (s *Service) Submit(ctx context.Context, sess *Session, contact Contact) (int64, Draft, error) {
	if err := s.validate.Struct(contact); err != nil {
		return 0, Draft{}, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	if !sess.beginSubmit() {
		return 0, Draft{}, ErrSubmitInProgress
	}
	defer sess.endSubmit()

	draft, err := sess.Flow.Confirm()
	if err != nil {
		return 0, Draft{}, err
	}
	sess.UpdateContact(func(c *Contact) { *c = contact })

	id, err := s.checkout.Submit(ctx, draft, contact)
	if err != nil {
		metrics.IncBooking("failed")
		s.publish(events.TypeBookingSubmitFail, sess, map[string]any{"error": err.Error()})
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("checkout failed")
		return 0, draft, fmt.Errorf("submit booking: %w", err)
	}

	sess.Flow.Cart.Clear()
	sess.Flow.ResetSelection()
	sess.SetState(StateComplete)
	metrics.IncBooking("submitted")
	s.publish(events.TypeBookingSubmitted, sess, map[string]any{"appointment_id": id, "draft": draft})
	s.logger.Info().Str("session_id", sess.ID).Int64("appointment_id", id).Msg("booking submitted")
	return id, draft, nil
}

// Back steps the session one screen back.
func (s *Service) Back(sess *Session) State {
	to := Back(sess.State())
	if to == StateBrowsing {
		sess.Flow.ResetSelection()
	}
	if !s.fsm.Transition(sess, to) {
		sess.SetState(to)
	}
	return sess.State()
}

// Cancel abandons the booking and clears the cart.
func (s *Service) Cancel(sess *Session) {
	sess.Flow.Cart.Clear()
	sess.Flow.ResetSelection()
	s.fsm.Transition(sess, StateCanceled)
	metrics.IncBooking("canceled")
}

func (s *Service) requireCalendar(sess *Session) error {
	if sess.Flow.Cart.Empty() {
		s.fallbackIfEmpty(sess)
		return ErrEmptyCart
	}
	if sess.Flow.StylistID() == 0 {
		return ErrNoStylist
	}
	return nil
}

func (s *Service) fallbackIfEmpty(sess *Session) {
	if !sess.Flow.Cart.Empty() {
		return
	}
	switch sess.State() {
	case StateChoosingDate, StateChoosingTime, StateConfirming, StateAwaitingContact:
		sess.Flow.ResetSelection()
		sess.SetState(StateBrowsing)
	}
}

func (s *Service) publish(eventType string, sess *Session, payload any) {
	if err := s.bus.PublishJSON(eventType, sess.ID, payload); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Msg("publish event")
	}
}
