package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/takumidev/mercari-price-bot/internal/config"
)

// Telegram sends notifications to a chat via the Bot API. Error
// reports get the screenshot attached as a photo and the page source
// as a document so UI desyncs can be diagnosed from the chat alone.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func NewTelegram(cfg *config.Telegram) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: slog.Default().With("component", "notify"),
	}, nil
}

func (t *Telegram) Error(title string, cause error, screenshot []byte, pageSource string) error {
	text := fmt.Sprintf("⚠️ %s\n\n%v", title, cause)
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("failed to send error message: %w", err)
	}

	if len(screenshot) > 0 {
		photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FileBytes{
			Name:  "screenshot.png",
			Bytes: screenshot,
		})
		photo.Caption = "エラー時のスクリーンショット"
		if _, err := t.bot.Send(photo); err != nil {
			t.logger.Warn("failed to send screenshot", "error", err)
		}
	}

	if pageSource != "" {
		doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FileBytes{
			Name:  "page.html",
			Bytes: []byte(pageSource),
		})
		if _, err := t.bot.Send(doc); err != nil {
			t.logger.Warn("failed to send page source", "error", err)
		}
	}

	return nil
}

func (t *Telegram) Info(title, body string) error {
	text := fmt.Sprintf("%s\n\n%s", title, body)
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("failed to send info message: %w", err)
	}
	return nil
}
