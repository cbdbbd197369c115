package salonapi

import (
	"context"
	"errors"
	"fmt"

	"salonbook/internal/auth"
)

// Stylist is a backend stylist record.
type Stylist struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
}

// Login is the result of a stylist login.
type Login struct {
	Stylist Stylist `json:"stylist"`
	Auth    struct {
		IsAdmin bool   `json:"isAdmin"`
		Role    string `json:"role"`
	} `json:"auth"`
}

// Role maps the backend flags to a session role.
func (l Login) Role() auth.Role {
	if l.Auth.IsAdmin || l.Auth.Role == string(auth.RoleAdmin) {
		return auth.RoleAdmin
	}
	return auth.RoleStylist
}

// LoginStylist checks stylist credentials. Bad credentials return ErrUnauthorized.
func (c *Client) LoginStylist(ctx context.Context, email, password string) (Login, error) {
	body := map[string]string{"email": email, "password": password}
	var out Login
	if err := c.doPost(ctx, "stylist_login", c.baseURL+"/stylists/login", body, &out); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return Login{}, ErrUnauthorized
		}
		return Login{}, fmt.Errorf("stylist login: %w", err)
	}
	if out.Stylist.ID == 0 {
		return Login{}, ErrUnauthorized
	}
	return out, nil
}

// ListAppointments returns all appointments, or those of one stylist when stylistID > 0.
func (c *Client) ListAppointments(ctx context.Context, stylistID int64) ([]Appointment, error) {
	endpoint := c.baseURL + "/appointments"
	if stylistID > 0 {
		endpoint = fmt.Sprintf("%s/appointments/stylist/%d", c.baseURL, stylistID)
	}
	var out []Appointment
	if err := c.doGet(ctx, "appointments", endpoint, &out); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}
