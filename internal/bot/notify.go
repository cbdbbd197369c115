package bot

import (
	"context"
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salonbook/internal/booking"
	"salonbook/internal/events"
)

type submittedPayload struct {
	AppointmentID int64         `json:"appointment_id"`
	Draft         booking.Draft `json:"draft"`
}

// NotifyStaff sends every submitted booking to the staff chats.
func (b *Bot) NotifyStaff(ctx context.Context, bus *events.Bus, chatIDs []int64) {
	if b == nil || bus == nil || len(chatIDs) == 0 {
		return
	}
	bus.Subscribe(events.TypeBookingSubmitted, func(ev events.Event) error {
		var p submittedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode submitted booking: %w", err)
		}
		text := formatStaffMessage(p)
		for _, chatID := range chatIDs {
			b.send(ctx, tgbotapi.NewMessage(chatID, text))
		}
		return nil
	})
}

func formatStaffMessage(p submittedPayload) string {
	return fmt.Sprintf("📥 New appointment #%d (stylist %d)\n\n%s", p.AppointmentID, p.Draft.StylistID, p.Draft.Summary())
}
