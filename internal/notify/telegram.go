// Package notify delivers run results to users. Notification is optional:
// a nil notifier simply drops events.
package notify

import (
	"context"
	"fmt"

	"jobpilot/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Telegram sends per-user run summaries over Telegram. The bot is
// send-only; no handlers, no polling.
type Telegram struct {
	bot    *tele.Bot
	logger *zap.Logger
}

func NewTelegram(token string, logger *zap.Logger) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("telegram notifier initialized")

	return &Telegram{
		bot:    bot,
		logger: logger,
	}, nil
}

// ApplicationsSubmitted tells the user how many applications went out for
// them this run. Users without a chat ID on file are skipped.
func (t *Telegram) ApplicationsSubmitted(ctx context.Context, profile *models.CandidateProfile, submitted int) {
	if profile.TelegramChatID == nil {
		return
	}

	recipient := &tele.User{ID: *profile.TelegramChatID}
	message := fmt.Sprintf("%d new job applications were submitted on your behalf this run.", submitted)

	if _, err := t.bot.Send(recipient, message); err != nil {
		t.logger.Error("failed to send run notification",
			zap.Int64("user_id", profile.UserID),
			zap.Error(err),
		)
	}
}
