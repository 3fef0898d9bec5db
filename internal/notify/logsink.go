package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Spok95/student-contracts-backend/internal/models"
)

// LogSink — пишет уведомления в лог. Работает всегда; удобен в dev
// и как страховка, когда телеграм-канал не настроен.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink { return &LogSink{log: log} }

func (l *LogSink) Deliver(_ context.Context, text string, recipients []models.User) error {
	emails := make([]string, 0, len(recipients))
	for _, u := range recipients {
		emails = append(emails, u.Email)
	}
	l.log.Infow("уведомление", "text", text, "to", emails)
	return nil
}
