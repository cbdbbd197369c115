package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/booking"
	"salonbook/internal/calendar"
	"salonbook/internal/cart"
	"salonbook/internal/catalog"
	"salonbook/internal/events"
	"salonbook/internal/schedule"
	"salonbook/internal/slots"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests int
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeTelegram) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTelegram) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "salonbook_bot"}
}

func (f *fakeTelegram) last() (string, *tgbotapi.InlineKeyboardMarkup, int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return "", nil, 0
	}
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		markup, _ := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		return m.Text, &markup, m.ChatID
	case tgbotapi.EditMessageTextConfig:
		return m.Text, m.ReplyMarkup, m.ChatID
	}
	return "", nil, 0
}

func (f *fakeTelegram) sentTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeSource struct{}

func (fakeSource) GetAvailability(_ context.Context, stylistID int64) ([]schedule.Record, error) {
	if stylistID != 1 {
		return nil, nil
	}
	return []schedule.Record{
		{ID: 1, Date: "2025-02-16", TimeSlots: []string{"08:00 AM", "09:30 AM", "12:30 PM"}},
		{ID: 2, Date: "2025-02-18", TimeSlots: []string{"05:00 PM"}},
	}, nil
}

type fakeCheckout struct {
	mu       sync.Mutex
	contacts []booking.Contact
}

func (f *fakeCheckout) Submit(_ context.Context, _ booking.Draft, contact booking.Contact) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, contact)
	return 42, nil
}

var testClock = func() time.Time { return time.Date(2025, time.February, 14, 9, 0, 0, 0, time.UTC) }

func testServices() *catalog.Local {
	return catalog.NewLocal([]catalog.Service{
		{ID: "1", Name: "Haircut", Price: decimal.RequireFromString("25.00"), Duration: 30},
		{ID: "2", Name: "Massage", Price: decimal.RequireFromString("60.00"), Duration: 60},
		{ID: "3", Name: "Facial", Price: decimal.RequireFromString("50.00"), Duration: 45},
	})
}

func newTestBot(t *testing.T) (*Bot, *fakeTelegram, *fakeCheckout, *events.Bus) {
	t.Helper()
	services := testServices()
	newFlow := func() *booking.Flow {
		return booking.NewFlow(
			cart.New(services),
			schedule.NewStore(fakeSource{}, nil),
			calendar.New(calendar.WithClock(testClock)),
			slots.NewPicker(),
		)
	}
	checkout := &fakeCheckout{}
	bus := events.NewBus(nil)
	svc := booking.NewService(booking.NewSessionStore(time.Hour, newFlow), checkout, bus, nil, nil, 1)

	tg := &fakeTelegram{}
	b, err := NewWithTelegramClient(tg, svc, services, 0, nil)
	require.NoError(t, err)
	return b, tg, checkout, bus
}

const chatID int64 = 555

func command(text string) *tgbotapi.Update {
	name, _, _ := strings.Cut(text, " ")
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func message(text string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID},
	}}
}

func callback(data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func buttons(markup *tgbotapi.InlineKeyboardMarkup) map[string]string {
	out := make(map[string]string)
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				out[btn.Text] = *btn.CallbackData
			}
		}
	}
	return out
}

func TestCalendarKeyboard(t *testing.T) {
	idx, errs := schedule.Shape([]schedule.Record{
		{ID: 1, Date: "2025-02-16", TimeSlots: []string{"08:00 AM"}},
	})
	require.Empty(t, errs)

	sel := calendar.New(calendar.WithClock(testClock))
	_, err := sel.SelectDay("2025-02-18")
	require.NoError(t, err)

	kb := CalendarKeyboard(sel.Grid(idx))
	rows := kb.InlineKeyboard

	require.Len(t, rows, 2+5+1)
	assert.Equal(t, "February 2025", rows[0][1].Text)
	assert.Equal(t, cbPrevMonth, *rows[0][0].CallbackData)
	assert.Equal(t, "Sun", rows[1][0].Text)

	// Feb 1 2025 is a Saturday.
	assert.Equal(t, " ", rows[2][0].Text)
	assert.Equal(t, cbNoop, *rows[2][0].CallbackData)
	assert.Equal(t, "date:2025-02-01", *rows[2][6].CallbackData)

	week := rows[5]
	assert.Equal(t, "16", week[0].Text)
	assert.Equal(t, "date:2025-02-16", *week[0].CallbackData)
	assert.Equal(t, "17×", week[1].Text)
	assert.Equal(t, "date:2025-02-17", *week[1].CallbackData)
	assert.Equal(t, "[18×]", week[2].Text)

	assert.Equal(t, "•14×", rows[4][5].Text)
	assert.Equal(t, "date:2025-02-14", *rows[4][5].CallbackData)

	assert.Equal(t, cbBack, *rows[len(rows)-1][0].CallbackData)
}

func TestDayLabelMarkersCombine(t *testing.T) {
	tests := []struct {
		name string
		cell calendar.Cell
		want string
	}{
		{"plain", calendar.Cell{Day: 3, HasAvailability: true}, "3"},
		{"no availability", calendar.Cell{Day: 3}, "3×"},
		{"today", calendar.Cell{Day: 14, Today: true, HasAvailability: true}, "•14"},
		{"selected", calendar.Cell{Day: 9, Selected: true, HasAvailability: true}, "[9]"},
		{"today selected and booked out", calendar.Cell{Day: 14, Today: true, Selected: true}, "[•14×]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dayLabel(tt.cell))
		})
	}
}

func TestSlotsKeyboard(t *testing.T) {
	idx, _ := schedule.Shape([]schedule.Record{
		{ID: 1, Date: "2025-02-16", TimeSlots: []string{"08:00 AM", "08:30 AM", "09:00 AM", "09:30 AM", "12:30 PM"}},
	})
	day, ok := idx.Day("2025-02-16")
	require.True(t, ok)

	p := slots.NewPicker()
	p.Show("2025-02-16", day, ok)
	_, err := p.Pick("09:00 AM")
	require.NoError(t, err)

	kb := SlotsKeyboard(p.Sections(), true)
	rows := kb.InlineKeyboard

	assert.Equal(t, "Morning (6:00 AM - 11:30 AM)", rows[0][0].Text)
	require.Len(t, rows[1], 3)
	assert.Equal(t, "slot:08:00 AM", *rows[1][0].CallbackData)
	assert.Equal(t, "✅ 09:00 AM", rows[1][2].Text)
	require.Len(t, rows[2], 1)
	assert.Equal(t, "Afternoon (12:00 PM - 4:30 PM)", rows[3][0].Text)
	assert.Equal(t, "Evening (5:00 PM - 8:30 PM)", rows[5][0].Text)
	assert.Equal(t, "no availability", rows[6][0].Text)
	assert.Equal(t, cbNoop, *rows[6][0].CallbackData)
	assert.Equal(t, "no availability", rows[8][0].Text)
	assert.Equal(t, cbConfirm, *rows[9][0].CallbackData)
	assert.Equal(t, cbBack, *rows[10][0].CallbackData)

	kb = SlotsKeyboard(p.Sections(), false)
	assert.NotContains(t, buttons(&kb), "Continue ➡️")
}

func TestServicesKeyboard(t *testing.T) {
	services := testServices()
	c := cart.New(services)
	_, err := c.Add(context.Background(), "1")
	require.NoError(t, err)

	list, err := services.List(context.Background())
	require.NoError(t, err)

	kb := ServicesKeyboard(list, c)
	btns := buttons(&kb)
	assert.Equal(t, "svc:rm:1", btns["✅ Haircut · $25.00"])
	assert.Equal(t, "svc:add:2", btns["➕ Massage · $60.00"])
	assert.Equal(t, cbOpenCal, btns["🗓 Choose a date"])

	c.Clear()
	kb = ServicesKeyboard(list, c)
	assert.NotContains(t, buttons(&kb), "🗓 Choose a date")
}

func TestEmptyCartRedirectsToServices(t *testing.T) {
	b, tg, _, _ := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, callback(cbOpenCal))
	text, markup, _ := tg.last()
	assert.True(t, strings.HasPrefix(text, emptyCartText))
	assert.Contains(t, buttons(markup), "➕ Haircut · $25.00")

	b.handleUpdate(ctx, callback("date:2025-02-16"))
	text, _, _ = tg.last()
	assert.True(t, strings.HasPrefix(text, emptyCartText))
}

func TestBookingConversation(t *testing.T) {
	b, tg, checkout, bus := newTestBot(t)
	ctx := context.Background()
	b.NotifyStaff(ctx, bus, []int64{999})

	b.handleUpdate(ctx, command("/start"))
	text, _, _ := tg.last()
	assert.Contains(t, text, "Your cart is empty.")

	b.handleUpdate(ctx, callback("svc:add:1"))
	b.handleUpdate(ctx, callback("svc:add:2"))
	text, markup, _ := tg.last()
	assert.Contains(t, text, "Total: $85.00 · 90 min")
	assert.Equal(t, "svc:rm:1", buttons(markup)["✅ Haircut · $25.00"])

	b.handleUpdate(ctx, callback(cbOpenCal))
	_, markup, _ = tg.last()
	assert.Equal(t, "date:2025-02-16", buttons(markup)["16"])

	b.handleUpdate(ctx, callback("date:2025-02-16"))
	text, markup, _ = tg.last()
	assert.Contains(t, text, "Evening: no availability")
	assert.NotContains(t, buttons(markup), "Continue ➡️")

	b.handleUpdate(ctx, callback("slot:09:30 AM"))
	_, markup, _ = tg.last()
	assert.Equal(t, cbConfirm, buttons(markup)["Continue ➡️"])

	b.handleUpdate(ctx, callback(cbConfirm))
	text, _, _ = tg.last()
	assert.Contains(t, text, "Time: 09:30 AM")
	assert.Contains(t, text, "Total: $85.00")

	b.handleUpdate(ctx, callback(cbBook))
	text, _, _ = tg.last()
	assert.Contains(t, text, "first name")

	b.handleUpdate(ctx, message("Jane"))
	b.handleUpdate(ctx, message("Doe"))
	b.handleUpdate(ctx, message("not-an-email"))
	text, _, _ = tg.last()
	assert.Contains(t, text, "does not look like an email")
	b.handleUpdate(ctx, message("jane@example.com"))
	b.handleUpdate(ctx, message("-"))

	text, _, _ = tg.last()
	assert.Contains(t, text, "Booked! Appointment #42")
	require.Len(t, checkout.contacts, 1)
	assert.Equal(t, booking.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"}, checkout.contacts[0])

	staff := tg.sentTo(999)
	require.Len(t, staff, 1)
	assert.Contains(t, staff[0], "New appointment #42 (stylist 1)")

	sess := b.session(chatID)
	assert.Equal(t, booking.StateComplete, sess.State())
	assert.True(t, sess.Flow.Cart.Empty())
}

func TestBackReturnsToCalendar(t *testing.T) {
	b, tg, _, _ := newTestBot(t)
	ctx := context.Background()

	b.handleUpdate(ctx, callback("svc:add:3"))
	b.handleUpdate(ctx, callback(cbOpenCal))
	b.handleUpdate(ctx, callback("date:2025-02-18"))

	b.handleUpdate(ctx, callback(cbBack))
	text, _, _ := tg.last()
	assert.True(t, strings.HasPrefix(text, "Pick a date"))
	assert.Equal(t, booking.StateChoosingDate, b.session(chatID).State())

	b.handleUpdate(ctx, callback(cbCancel))
	assert.Equal(t, booking.StateCanceled, b.session(chatID).State())
	assert.True(t, b.session(chatID).Flow.Cart.Empty())
}
