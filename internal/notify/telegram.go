package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/student-contracts-backend/internal/models"
	"github.com/Spok95/student-contracts-backend/internal/observability"
)

// TelegramSink — шлёт уведомления в служебный чат кафедры.
// Персональной доставки нет: адресаты перечисляются в тексте.
type TelegramSink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramSink(bot *tgbotapi.BotAPI, chatID int64) *TelegramSink {
	return &TelegramSink{bot: bot, chatID: chatID}
}

func (t *TelegramSink) Deliver(_ context.Context, text string, recipients []models.User) error {
	if t.bot == nil || t.chatID == 0 {
		return nil
	}
	if len(recipients) > 0 {
		names := make([]string, 0, len(recipients))
		for _, u := range recipients {
			names = append(names, fmt.Sprintf("%s <%s>", u.Name, u.Email))
		}
		text += "\nКому: " + strings.Join(names, ", ")
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return err
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout") {
		return true
	}
	return false
}
