// Package bot is the Telegram front end of the booking flow.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"salonbook/internal/booking"
	"salonbook/internal/cart"
	"salonbook/internal/catalog"
	"salonbook/internal/slots"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

const helpText = "Commands:\n/services - pick services\n/book - choose a date\n/cancel - cancel the booking\n/help - this message"

// Bot drives booking sessions from Telegram chats. Each chat owns one session.
type Bot struct {
	tg       telegramClient
	booking  *booking.Service
	sessions *booking.SessionStore
	catalog  catalog.Source
	validate *validator.Validate
	limiter  *rate.Limiter
	state    *stateStore
	logger   *zerolog.Logger
}

// New connects to Telegram. messagesPerSecond throttles outgoing messages.
func New(token string, debug bool, svc *booking.Service, cat catalog.Source, messagesPerSecond float64, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return NewWithTelegramClient(&realTelegramClient{api: api}, svc, cat, messagesPerSecond, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, svc *booking.Service, cat catalog.Source, messagesPerSecond float64, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if svc == nil || cat == nil {
		return nil, fmt.Errorf("booking service and catalog are required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	limit := rate.Inf
	burst := 1
	if messagesPerSecond > 0 {
		limit = rate.Limit(messagesPerSecond)
		burst = max(1, int(messagesPerSecond))
	}
	return &Bot{
		tg:       tg,
		booking:  svc,
		sessions: svc.Sessions(),
		catalog:  cat,
		validate: validator.New(),
		limiter:  rate.NewLimiter(limit, burst),
		state:    newStateStore(),
		logger:   logger,
	}, nil
}

// Start polls updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("telegram bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			l := b.logger.With().Str("request_id", uuid.NewString()).Logger()
			b.handleUpdate(l.WithContext(ctx), &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("chat_id", update.Message.Chat.ID).
			Msg("handling message")
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) session(chatID int64) *booking.Session {
	return b.sessions.GetOrCreate(fmt.Sprintf("tg:%d", chatID))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	sess := b.session(chatID)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "services":
			b.state.reset(chatID)
			b.showServices(ctx, chatID, 0, sess, "Pick the services you want:")
		case "book":
			b.state.reset(chatID)
			b.openCalendar(ctx, chatID, 0, sess)
		case "cancel":
			b.state.reset(chatID)
			b.booking.Cancel(sess)
			b.reply(ctx, chatID, "Booking canceled. Use /services to start again.")
		default:
			b.reply(ctx, chatID, helpText)
		}
		return
	}

	if b.state.get(chatID) != stepNone {
		b.handleContactStep(ctx, chatID, sess, text)
		return
	}
	b.reply(ctx, chatID, "Use /services to start booking.")
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	data := cq.Data
	b.answerCallback(cq.ID, "")
	if data == cbNoop {
		return
	}

	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	sess := b.session(chatID)

	switch {
	case strings.HasPrefix(data, cbAddPrefix):
		id := catalog.ID(strings.TrimPrefix(data, cbAddPrefix))
		if _, err := b.booking.AddService(ctx, sess, id); err != nil {
			b.reply(ctx, chatID, "Could not add that service, please try again.")
		}
		b.showServices(ctx, chatID, messageID, sess, "Pick the services you want:")
	case strings.HasPrefix(data, cbRmPrefix):
		b.booking.RemoveService(sess, catalog.ID(strings.TrimPrefix(data, cbRmPrefix)))
		b.showServices(ctx, chatID, messageID, sess, "Pick the services you want:")
	case data == cbClearCart:
		b.booking.ClearCart(sess)
		b.showServices(ctx, chatID, messageID, sess, "Cart cleared. Pick the services you want:")
	case data == cbOpenCal:
		b.openCalendar(ctx, chatID, messageID, sess)
	case data == cbPrevMonth, data == cbNextMonth:
		if sess.Flow.Cart.Empty() {
			b.showServices(ctx, chatID, messageID, sess, emptyCartText)
			return
		}
		if data == cbPrevMonth {
			sess.Flow.Calendar.PrevMonth()
		} else {
			sess.Flow.Calendar.NextMonth()
		}
		b.showCalendar(ctx, chatID, messageID, sess, "")
	case strings.HasPrefix(data, cbDate):
		b.handleDate(ctx, chatID, messageID, sess, strings.TrimPrefix(data, cbDate))
	case strings.HasPrefix(data, cbSlot):
		b.handleSlot(ctx, chatID, messageID, sess, strings.TrimPrefix(data, cbSlot))
	case data == cbConfirm:
		b.handleConfirm(ctx, chatID, messageID, sess)
	case data == cbBook:
		if err := b.booking.RequestContact(sess); err != nil {
			b.reply(ctx, chatID, "Please confirm your selection first.")
			return
		}
		b.state.set(chatID, stepFirstName)
		b.reply(ctx, chatID, "Almost done! What is your first name?")
	case data == cbBack:
		b.state.reset(chatID)
		b.booking.Back(sess)
		b.renderState(ctx, chatID, messageID, sess)
	case data == cbCancel:
		b.state.reset(chatID)
		b.booking.Cancel(sess)
		b.render(ctx, chatID, messageID, "Booking canceled.", RestartKeyboard())
	case data == cbServices:
		b.showServices(ctx, chatID, messageID, sess, "Pick the services you want:")
	}
}

const emptyCartText = "Your cart is empty. Pick a service first:"

func (b *Bot) handleDate(ctx context.Context, chatID int64, messageID int, sess *booking.Session, date string) {
	if _, err := b.booking.SelectDay(sess, date); err != nil {
		b.handleFlowError(ctx, chatID, messageID, sess, err)
		return
	}
	b.showSlots(ctx, chatID, messageID, sess)
}

func (b *Bot) handleSlot(ctx context.Context, chatID int64, messageID int, sess *booking.Session, label string) {
	if _, err := b.booking.PickSlot(sess, label); err != nil {
		b.handleFlowError(ctx, chatID, messageID, sess, err)
		return
	}
	b.showSlots(ctx, chatID, messageID, sess)
}

func (b *Bot) handleConfirm(ctx context.Context, chatID int64, messageID int, sess *booking.Session) {
	draft, err := b.booking.Confirm(sess)
	if err != nil {
		b.handleFlowError(ctx, chatID, messageID, sess, err)
		return
	}
	b.render(ctx, chatID, messageID, "Please check your booking:\n\n"+draft.Summary(), ConfirmKeyboard())
}

func (b *Bot) handleFlowError(ctx context.Context, chatID int64, messageID int, sess *booking.Session, err error) {
	switch {
	case errors.Is(err, booking.ErrEmptyCart):
		b.showServices(ctx, chatID, messageID, sess, emptyCartText)
	case errors.Is(err, booking.ErrNoStylist):
		b.openCalendar(ctx, chatID, messageID, sess)
	case errors.Is(err, slots.ErrSlotUnavailable):
		b.reply(ctx, chatID, "That time is no longer available, please pick another one.")
	case errors.Is(err, slots.ErrNoDate), errors.Is(err, booking.ErrNotReady):
		b.reply(ctx, chatID, "Please pick a date and a time first.")
	default:
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", sess.ID).Msg("booking action failed")
		b.reply(ctx, chatID, "Something went wrong, please try again.")
	}
}

func (b *Bot) openCalendar(ctx context.Context, chatID int64, messageID int, sess *booking.Session) {
	err := b.booking.OpenCalendar(ctx, sess, 0)
	switch {
	case errors.Is(err, booking.ErrEmptyCart):
		b.showServices(ctx, chatID, messageID, sess, emptyCartText)
		return
	case errors.Is(err, booking.ErrNoStylist):
		b.reply(ctx, chatID, "No stylist is available for booking.")
		return
	}
	notice := ""
	if err != nil {
		notice = "⚠️ Could not load availability. Try again later."
	}
	b.showCalendar(ctx, chatID, messageID, sess, notice)
}

// renderState redraws the screen of the session's current step.
func (b *Bot) renderState(ctx context.Context, chatID int64, messageID int, sess *booking.Session) {
	switch sess.State() {
	case booking.StateChoosingDate:
		b.showCalendar(ctx, chatID, messageID, sess, "")
	case booking.StateChoosingTime:
		b.showSlots(ctx, chatID, messageID, sess)
	case booking.StateConfirming:
		b.handleConfirm(ctx, chatID, messageID, sess)
	default:
		b.showServices(ctx, chatID, messageID, sess, "Pick the services you want:")
	}
}

func (b *Bot) showServices(ctx context.Context, chatID int64, messageID int, sess *booking.Session, header string) {
	services, err := b.catalog.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list services")
		b.reply(ctx, chatID, "Services are unavailable right now, please try again later.")
		return
	}
	text := header + "\n\n" + cartSummary(sess.Flow.Cart)
	b.render(ctx, chatID, messageID, text, ServicesKeyboard(services, sess.Flow.Cart))
}

func (b *Bot) showCalendar(ctx context.Context, chatID int64, messageID int, sess *booking.Session, notice string) {
	text := "Pick a date. • is today, days marked × have no free times."
	if notice != "" {
		text = notice + "\n\n" + text
	}
	b.render(ctx, chatID, messageID, text, CalendarKeyboard(sess.Flow.Grid()))
}

func (b *Bot) showSlots(ctx context.Context, chatID int64, messageID int, sess *booking.Session) {
	sections := sess.Flow.Picker.Sections()
	b.render(ctx, chatID, messageID, slotsText(sess.Flow.Picker.Date(), sections), SlotsKeyboard(sections, sess.Flow.CanConfirm()))
}

func cartSummary(c *cart.Cart) string {
	items := c.Items()
	if len(items) == 0 {
		return "Your cart is empty."
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Service.Name)
	}
	return fmt.Sprintf("Cart: %s\nTotal: %s · %d min",
		strings.Join(names, ", "),
		booking.FormatUSD(cart.TotalPrice(items)),
		cart.TotalDuration(items))
}

func slotsText(date string, sections []slots.Section) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Available times for %s:\n", date)
	for _, s := range sections {
		if s.NoAvailability() {
			fmt.Fprintf(&sb, "\n%s: no availability", s.Title)
			continue
		}
		fmt.Fprintf(&sb, "\n%s: %d open", s.Title, len(s.Chips))
	}
	return sb.String()
}

// render edits the message behind a callback, or sends a new one when messageID is 0.
func (b *Bot) render(ctx context.Context, chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if messageID != 0 {
		b.send(ctx, tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup))
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	b.send(ctx, msg)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.tg.Send(c); err != nil {
		b.logger.Warn().Err(err).Msg("telegram send failed")
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.tg.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Debug().Err(err).Msg("answer callback")
	}
}
