package salonapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"salonbook/internal/booking"
	"salonbook/internal/catalog"
)

// Customer is a backend customer record.
type Customer struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Appointment is the backend's view of a booked appointment.
type Appointment struct {
	ID              int64             `json:"id"`
	CustomerID      int64             `json:"customer_id,omitempty"`
	StylistID       int64             `json:"stylist_id,omitempty"`
	AppointmentDate string            `json:"appointment_date,omitempty"`
	AppointmentTime string            `json:"appointment_time,omitempty"`
	Status          string            `json:"status,omitempty"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	FirstName       string            `json:"first_name,omitempty"`
	LastName        string            `json:"last_name,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Services        []AppointmentLine `json:"services,omitempty"`
}

// AppointmentLine is one service of a listed appointment.
type AppointmentLine struct {
	ID          int64           `json:"id"`
	ServiceID   catalog.ID      `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Price       decimal.Decimal `json:"price"`
}

// FindOrCreateCustomer returns the customer matching the contact, creating it if needed.
func (c *Client) FindOrCreateCustomer(ctx context.Context, contact booking.Contact) (Customer, error) {
	body := Customer{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
	}
	var out Customer
	if err := c.doPost(ctx, "customer_find_or_create", c.baseURL+"/customers/find-or-create", body, &out); err != nil {
		return Customer{}, fmt.Errorf("find or create customer: %w", err)
	}
	if out.ID == 0 {
		return Customer{}, errors.New("find or create customer: response has no id")
	}
	return out, nil
}

// CreateAppointment posts a new appointment.
func (c *Client) CreateAppointment(ctx context.Context, req booking.AppointmentRequest) (Appointment, error) {
	var out Appointment
	if err := c.doPost(ctx, "appointment_create", c.baseURL+"/appointments", req, &out); err != nil {
		return Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	if out.ID == 0 {
		return Appointment{}, errors.New("create appointment: response has no id")
	}
	return out, nil
}

// Submit creates the customer and the appointment for a confirmed draft.
func (c *Client) Submit(ctx context.Context, draft booking.Draft, contact booking.Contact) (int64, error) {
	customer, err := c.FindOrCreateCustomer(ctx, contact)
	if err != nil {
		return 0, err
	}
	appt, err := c.CreateAppointment(ctx, draft.AppointmentPayload(customer.ID))
	if err != nil {
		return 0, err
	}
	c.InvalidateAvailability(ctx, draft.StylistID)
	c.logger.Info().
		Int64("appointment_id", appt.ID).
		Int64("customer_id", customer.ID).
		Int64("stylist_id", draft.StylistID).
		Str("date", draft.Date).
		Str("time", draft.Time).
		Msg("appointment created")
	return appt.ID, nil
}
