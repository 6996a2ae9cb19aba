package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"daily-meal-planner/internal/config"
	"daily-meal-planner/internal/logfields"
	"daily-meal-planner/internal/planner"
	"daily-meal-planner/internal/reminder"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNoChat is returned when no chat ID is configured.
var ErrNoChat = errors.New("telegram chat id not configured")

// sender is the part of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetMe() (tgbotapi.User, error)
}

// Notifier pushes reminders and plans into a single Telegram chat.
// Permission stays "default" until RequestPermission verifies the bot.
type Notifier struct {
	api    sender
	chatID int64

	mu         sync.Mutex
	permission reminder.Permission
}

// NewNotifier connects to the Bot API with the configured token.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	if !cfg.TelegramEnabled() {
		return nil, fmt.Errorf("telegram notifier needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	slog.Info("Authorized on Telegram", slog.String("account", bot.Self.UserName))
	return newNotifier(bot, cfg.TelegramChatID), nil
}

func newNotifier(api sender, chatID int64) *Notifier {
	return &Notifier{api: api, chatID: chatID, permission: reminder.PermissionDefault}
}

func (n *Notifier) Permission(context.Context) reminder.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

// RequestPermission checks that the bot token is valid and a chat is set.
func (n *Notifier) RequestPermission(context.Context) (reminder.Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.chatID == 0 {
		n.permission = reminder.PermissionDenied
		return n.permission, ErrNoChat
	}
	if _, err := n.api.GetMe(); err != nil {
		n.permission = reminder.PermissionDenied
		return n.permission, fmt.Errorf("failed to verify telegram bot: %w", err)
	}
	n.permission = reminder.PermissionGranted
	return n.permission, nil
}

// Notify sends one reminder.
func (n *Notifier) Notify(_ context.Context, kind reminder.Kind, msg reminder.Message) error {
	if err := n.send(FormatReminder(msg)); err != nil {
		return err
	}
	slog.Debug("Reminder sent to Telegram", logfields.Reminder(string(kind)))
	return nil
}

// SendText sends a Markdown message to the configured chat.
func (n *Notifier) SendText(_ context.Context, text string) error {
	return n.send(text)
}

func (n *Notifier) send(text string) error {
	if n.chatID == 0 {
		return ErrNoChat
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// SharePlan sends today's plan followed by its grocery list.
func (n *Notifier) SharePlan(_ context.Context, plan *planner.MealPlan, groceries []string) error {
	planText, groceryText := FormatPlanMarkdownParts(plan, groceries)
	if err := n.send(planText); err != nil {
		return err
	}
	return n.send(groceryText)
}
