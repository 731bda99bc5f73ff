package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram messages to the same chat to avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// RunSummary is what the pipeline reports when a run finishes.
type RunSummary struct {
	Players       int
	Fixtures      int
	Conflicts     int
	FailedPlayers []string
	Duration      time.Duration
	ReportPath    string
}

// TelegramNotifier sends a short summary message when a run completes.
// A nil notifier is valid and does nothing, same as the rest of the
// optional sinks.
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier creates a notifier. Returns nil on any setup error:
// notifications are best-effort and must not block a run.
func NewTelegramNotifier(token string, chatID int64) *TelegramNotifier {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("Failed to create telegram bot", "error", err)
		return nil
	}

	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		slog.Error("Failed to get bot info", "error", err)
		return nil
	}

	slog.Info("Telegram notifier initialized", "chat_id", chatID)
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// SendRunSummary sends the run summary, waiting out the per-chat rate
// limit if a previous message went out recently. Safe on a nil notifier.
func (n *TelegramNotifier) SendRunSummary(summary RunSummary) error {
	if n == nil || n.bot == nil {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if elapsed := time.Since(n.lastSend); elapsed < telegramSendInterval {
		time.Sleep(telegramSendInterval - elapsed)
	}

	msg := tgbotapi.NewMessage(n.chatID, formatRunSummary(summary))
	msg.ParseMode = tgbotapi.ModeMarkdown

	n.lastSend = time.Now()
	if _, err := n.bot.Send(msg); err != nil {
		slog.Error("Telegram send: failed", "error", err)
		return fmt.Errorf("send run summary: %w", err)
	}
	slog.Info("Telegram send: success", "players", summary.Players, "fixtures", summary.Fixtures)
	return nil
}

func formatRunSummary(s RunSummary) string {
	var builder strings.Builder

	builder.WriteString("✅ *Goalkeeper run finished*\n\n")
	builder.WriteString(fmt.Sprintf("👥 Players: *%d*\n", s.Players))
	builder.WriteString(fmt.Sprintf("⚽ Fixtures: *%d*\n", s.Fixtures))
	if s.Conflicts > 0 {
		builder.WriteString(fmt.Sprintf("⚠️ Rows with conflicts: *%d*\n", s.Conflicts))
	}
	if len(s.FailedPlayers) > 0 {
		builder.WriteString(fmt.Sprintf("❌ Failed players (%d): %s\n",
			len(s.FailedPlayers), escapeMarkdown(strings.Join(s.FailedPlayers, ", "))))
	}
	builder.WriteString(fmt.Sprintf("🕐 Duration: %s\n", s.Duration.Round(time.Second)))
	if s.ReportPath != "" {
		builder.WriteString(fmt.Sprintf("📄 Report: `%s`\n", s.ReportPath))
	}
	return builder.String()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
