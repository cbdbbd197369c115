package booking

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"salonbook/internal/cart"
	"salonbook/internal/catalog"
	"salonbook/internal/schedule"
)

// StatusPending is the status of a newly requested appointment.
const StatusPending = "pending"

// Draft is the selection handed to checkout: date, time, stylist and services.
type Draft struct {
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Period        schedule.Period `json:"period"`
	StylistID     int64           `json:"stylist_id"`
	Items         []cart.Item     `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalDuration int             `json:"total_duration"`
}

// NewDraft builds a draft and computes its totals.
func NewDraft(date string, slot schedule.Slot, stylistID int64, items []cart.Item) Draft {
	cp := make([]cart.Item, len(items))
	copy(cp, items)
	return Draft{
		Date:          date,
		Time:          slot.Label,
		Period:        slot.Period(),
		StylistID:     stylistID,
		Items:         cp,
		TotalPrice:    cart.TotalPrice(cp),
		TotalDuration: cart.TotalDuration(cp),
	}
}

// ServiceLine is the per-service price breakdown of an appointment.
type ServiceLine struct {
	ServiceID catalog.ID `json:"serviceId"`
	Price     float64    `json:"price"`
}

// AppointmentRequest is the payload of the backend's create-appointment call.
type AppointmentRequest struct {
	CustomerID      int64         `json:"customerId"`
	StylistID       int64         `json:"stylistId"`
	AppointmentDate string        `json:"appointmentDate"`
	AppointmentTime string        `json:"appointmentTime"`
	Status          string        `json:"status"`
	TotalAmount     float64       `json:"totalAmount"`
	Services        []ServiceLine `json:"services"`
}

// AppointmentPayload converts the draft for a customer.
func (d Draft) AppointmentPayload(customerID int64) AppointmentRequest {
	lines := make([]ServiceLine, 0, len(d.Items))
	for _, it := range d.Items {
		lines = append(lines, ServiceLine{
			ServiceID: it.ID,
			Price:     it.Service.Price.InexactFloat64(),
		})
	}
	return AppointmentRequest{
		CustomerID:      customerID,
		StylistID:       d.StylistID,
		AppointmentDate: d.Date,
		AppointmentTime: d.Time,
		Status:          StatusPending,
		TotalAmount:     d.TotalPrice.InexactFloat64(),
		Services:        lines,
	}
}

// Summary renders the draft for confirmation.
func (d Draft) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", d.Date)
	fmt.Fprintf(&b, "Time: %s\n", d.Time)
	b.WriteString("Services:\n")
	for _, it := range d.Items {
		fmt.Fprintf(&b, "  %s (%d min) %s\n", it.Service.Name, it.Service.Duration, FormatUSD(it.Service.Price))
	}
	fmt.Fprintf(&b, "Duration: %d min\n", d.TotalDuration)
	fmt.Fprintf(&b, "Total: %s", FormatUSD(d.TotalPrice))
	return b.String()
}

// FormatUSD formats an amount as "$1,234.50".
func FormatUSD(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	return sign + "$" + grouped.String() + "." + frac
}
