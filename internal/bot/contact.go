package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"salonbook/internal/booking"
)

// handleContactStep stores one answer and asks the next question. The last
// answer submits the booking.
func (b *Bot) handleContactStep(ctx context.Context, chatID int64, sess *booking.Session, text string) {
	switch b.state.get(chatID) {
	case stepFirstName:
		if b.validate.Var(text, "required,max=100") != nil {
			b.reply(ctx, chatID, "Please enter your first name:")
			return
		}
		sess.UpdateContact(func(c *booking.Contact) { c.FirstName = text })
		b.state.set(chatID, stepLastName)
		b.reply(ctx, chatID, "And your last name?")
	case stepLastName:
		if b.validate.Var(text, "required,max=100") != nil {
			b.reply(ctx, chatID, "Please enter your last name:")
			return
		}
		sess.UpdateContact(func(c *booking.Contact) { c.LastName = text })
		b.state.set(chatID, stepEmail)
		b.reply(ctx, chatID, "Your email address?")
	case stepEmail:
		if b.validate.Var(text, "required,email") != nil {
			b.reply(ctx, chatID, "That does not look like an email address. Try again:")
			return
		}
		sess.UpdateContact(func(c *booking.Contact) { c.Email = text })
		b.state.set(chatID, stepPhone)
		b.reply(ctx, chatID, "Your phone number? Send - to skip.")
	case stepPhone:
		if text != "-" {
			if b.validate.Var(text, "min=5,max=32") != nil {
				b.reply(ctx, chatID, "Please enter a valid phone number, or - to skip:")
				return
			}
			sess.UpdateContact(func(c *booking.Contact) { c.Phone = text })
		}
		b.submit(ctx, chatID, sess)
	}
}

func (b *Bot) submit(ctx context.Context, chatID int64, sess *booking.Session) {
	id, draft, err := b.booking.Submit(ctx, sess, sess.Contact())
	switch {
	case err == nil:
		b.state.reset(chatID)
		b.reply(ctx, chatID, fmt.Sprintf("✅ Booked! Appointment #%d\n\n%s", id, draft.Summary()))
	case errors.Is(err, booking.ErrInvalidContact):
		b.state.set(chatID, stepFirstName)
		b.reply(ctx, chatID, "Some details were not valid, let's try again. What is your first name?")
	case errors.Is(err, booking.ErrEmptyCart):
		b.state.reset(chatID)
		b.showServices(ctx, chatID, 0, sess, emptyCartText)
	case errors.Is(err, booking.ErrSubmitInProgress):
		b.reply(ctx, chatID, "Your booking is being submitted, please wait.")
	case errors.Is(err, booking.ErrNotReady):
		b.state.reset(chatID)
		b.reply(ctx, chatID, "Please pick a date and a time first.")
	default:
		zerolog.Ctx(ctx).Error().Err(err).Str("session_id", sess.ID).Msg("submit booking")
		b.reply(ctx, chatID, "Could not create the booking. Send your phone number again to retry, or /cancel.")
	}
}
