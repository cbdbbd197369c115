package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"salonbook/internal/booking"
	"salonbook/internal/calendar"
	"salonbook/internal/cart"
	"salonbook/internal/catalog"
	"salonbook/internal/slots"
)

// Callback data understood by the bot.
const (
	cbNoop      = "noop"
	cbAddPrefix = "svc:add:"
	cbRmPrefix  = "svc:rm:"
	cbClearCart = "cart:clear"
	cbOpenCal   = "cal:open"
	cbPrevMonth = "cal:prev"
	cbNextMonth = "cal:next"
	cbDate      = "date:"
	cbSlot      = "slot:"
	cbConfirm   = "confirm"
	cbBook      = "book"
	cbBack      = "back"
	cbCancel    = "cancel"
	cbServices  = "services"
)

const slotsPerRow = 3

// ServicesKeyboard lists the catalog with add/remove toggles and the cart actions.
func ServicesKeyboard(services []catalog.Service, c *cart.Cart) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(services)+2)
	for _, svc := range services {
		label := fmt.Sprintf("➕ %s · %s", svc.Name, booking.FormatUSD(svc.Price))
		data := cbAddPrefix + svc.ID.String()
		switch {
		case c.Contains(svc.ID):
			label = fmt.Sprintf("✅ %s · %s", svc.Name, booking.FormatUSD(svc.Price))
			data = cbRmPrefix + svc.ID.String()
		case c.Pending(svc.ID):
			label = fmt.Sprintf("⏳ %s", svc.Name)
			data = cbNoop
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}

	if !c.Empty() {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🗓 Choose a date", cbOpenCal)),
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🗑 Clear cart", cbClearCart)),
		)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// CalendarKeyboard renders a month grid. Every day stays selectable.
func CalendarKeyboard(m calendar.Month) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(m.Weeks)+3)

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("«", cbPrevMonth),
		tgbotapi.NewInlineKeyboardButtonData(m.Title, cbNoop),
		tgbotapi.NewInlineKeyboardButtonData("»", cbNextMonth),
	))

	header := make([]tgbotapi.InlineKeyboardButton, 0, len(m.Weekdays))
	for _, wd := range m.Weekdays {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(wd, cbNoop))
	}
	rows = append(rows, header)

	for _, week := range m.Weeks {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(week))
		for _, cell := range week {
			if cell.Blank() {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(" ", cbNoop))
				continue
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(dayLabel(cell), cbDate+cell.Date))
		}
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", cbBack),
	))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// Day markers combine: "[•14×]" is today, selected and without free times.
const (
	markToday          = "•"
	markNoAvailability = "×"
)

func dayLabel(cell calendar.Cell) string {
	label := strconv.Itoa(cell.Day)
	if !cell.HasAvailability {
		label += markNoAvailability
	}
	if cell.Today {
		label = markToday + label
	}
	if cell.Selected {
		label = "[" + label + "]"
	}
	return label
}

// SlotsKeyboard renders one header per period followed by its slots in rows of three.
// Periods without slots get a single inert "no availability" button.
func SlotsKeyboard(sections []slots.Section, canConfirm bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	for _, section := range sections {
		title := fmt.Sprintf("%s (%s)", section.Title, section.Range)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(title, cbNoop)))

		if section.NoAvailability() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("no availability", cbNoop)))
			continue
		}

		var current []tgbotapi.InlineKeyboardButton
		for _, chip := range section.Chips {
			text := chip.Label
			if chip.Selected {
				text = "✅ " + chip.Label
			}
			current = append(current, tgbotapi.NewInlineKeyboardButtonData(text, cbSlot+chip.Label))
			if len(current) == slotsPerRow {
				rows = append(rows, current)
				current = nil
			}
		}
		if len(current) > 0 {
			rows = append(rows, current)
		}
	}

	if canConfirm {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Continue ➡️", cbConfirm)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", cbBack)))
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ConfirmKeyboard is shown under the booking summary.
func ConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✅ Book", cbBook)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", cbBack),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cbCancel),
		),
	)
}

// RestartKeyboard leads back to service selection.
func RestartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🛍 Services", cbServices)),
	)
}
