package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"day-scheduler/internal/config"
	"day-scheduler/internal/logger"
	"day-scheduler/internal/model"
	"day-scheduler/internal/service"
)

const (
	cbDonePrefix = "done:"
	cbUndoPrefix = "undo:"
)

// Bot is the Telegram companion of the scheduler: it shows today's
// schedule, runs a sync and toggles completion.
type Bot struct {
	api       *tgbotapi.BotAPI
	tasks     *service.TaskService
	schedule  *service.ScheduleService
	reminders *service.ReminderService
	chatID    int64
	loc       *time.Location
	now       func() time.Time
}

func New(token string, tasks *service.TaskService, schedule *service.ScheduleService, reminders *service.ReminderService, cfg config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", "account", api.Self.UserName)

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:       api,
		tasks:     tasks,
		schedule:  schedule,
		reminders: reminders,
		chatID:    cfg.TelegramChatID,
		loc:       loc,
		now:       time.Now,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				logger.Error("handle callback", "error", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !allowedChat(b.chatID, update.Message.Chat.ID) {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				logger.Error("handle message", "chat", update.Message.Chat.ID, "error", err)
			}
		}
	}
	return ctx.Err()
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, helpText)
	}

	chatID := msg.Chat.ID
	args := msg.CommandArguments()
	logger.Debug("bot command", "chat", chatID, "command", msg.Command(), "args", args)

	switch msg.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "today":
		return b.sendToday(ctx, chatID)
	case "sync":
		return b.handleSync(ctx, chatID, args)
	case "done":
		return b.handleMark(ctx, chatID, args, true)
	case "undo":
		return b.handleMark(ctx, chatID, args, false)
	case "templates":
		return b.handleTemplates(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleSync(ctx context.Context, chatID int64, args string) error {
	templateID, err := parseTemplateArg(args)
	if err != nil {
		return b.sendText(chatID, escape(err.Error()))
	}

	entries, err := b.schedule.Sync(ctx, b.today(), templateID)
	if err != nil {
		if service.IsValidation(err) {
			return b.sendText(chatID, escape(err.Error()))
		}
		return err
	}

	if err := b.sendText(chatID, fmt.Sprintf("🔄 Loaded <b>Schedule %d</b>: %d entries.", templateID, len(entries))); err != nil {
		return err
	}
	return b.sendToday(ctx, chatID)
}

func (b *Bot) handleMark(ctx context.Context, chatID int64, args string, completed bool) error {
	id, err := parseEntryID(args)
	if err != nil {
		return b.sendText(chatID, escape(err.Error()))
	}

	entry, err := b.schedule.SetCompleted(ctx, id, completed)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(chatID, fmt.Sprintf("Entry #%d not found.", id))
		}
		return err
	}
	return b.sendText(chatID, markedText(entry))
}

func (b *Bot) handleTemplates(ctx context.Context, chatID int64) error {
	templates, err := b.tasks.Templates(ctx)
	if err != nil {
		return err
	}
	return b.sendText(chatID, templatesText(templates))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	id, completed, ok := parseCallback(cb.Data)
	if !ok || !allowedChat(b.chatID, cb.Message.Chat.ID) {
		b.ackCallback(cb.ID, "")
		return nil
	}

	entry, err := b.schedule.SetCompleted(ctx, id, completed)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.ackCallback(cb.ID, "Entry no longer exists")
			return b.refresh(ctx, cb.Message)
		}
		b.ackCallback(cb.ID, "")
		return err
	}

	notice := "Marked done"
	if !entry.Completed {
		notice = "Marked open"
	}
	b.ackCallback(cb.ID, notice)
	return b.refresh(ctx, cb.Message)
}

// SendDailyDigest posts today's schedule to the configured chat.
func (b *Bot) SendDailyDigest(ctx context.Context) error {
	if b.chatID == 0 {
		return errors.New("digest chat is not configured")
	}
	text, err := b.reminders.DailySummary(ctx, b.now().In(b.loc))
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	return b.sendText(b.chatID, text+"\n\nOpen /today to tick entries off.")
}

func (b *Bot) sendToday(ctx context.Context, chatID int64) error {
	text, entries, err := b.summary(ctx)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := entryKeyboard(entries); markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err = b.api.Send(msg)
	return err
}

// refresh redraws a summary message in place after a button press.
func (b *Bot) refresh(ctx context.Context, msg *tgbotapi.Message) error {
	text, entries, err := b.summary(ctx)
	if err != nil {
		return err
	}
	var edit tgbotapi.EditMessageTextConfig
	if markup := entryKeyboard(entries); markup != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(msg.Chat.ID, msg.MessageID, text, *markup)
	} else {
		edit = tgbotapi.NewEditMessageText(msg.Chat.ID, msg.MessageID, text)
	}
	edit.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(edit)
	return err
}

func (b *Bot) summary(ctx context.Context) (string, []model.ScheduleEntry, error) {
	now := b.now().In(b.loc)
	entries, err := b.schedule.ListEntries(ctx, model.DayOf(now))
	if err != nil {
		return "", nil, err
	}
	return service.FormatSummary(entries, now), entries, nil
}

func (b *Bot) today() string {
	return model.DayOf(b.now().In(b.loc))
}

func (b *Bot) ackCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logger.Warn("callback ack", "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}
