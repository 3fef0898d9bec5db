package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/Spok95/student-contracts-backend/internal/app"
	"github.com/Spok95/student-contracts-backend/internal/config"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/httpapi"
	"github.com/Spok95/student-contracts-backend/internal/jobs"
	"github.com/Spok95/student-contracts-backend/internal/logging"
	"github.com/Spok95/student-contracts-backend/internal/notify"
	"github.com/Spok95/student-contracts-backend/internal/observability"
	"github.com/Spok95/student-contracts-backend/internal/workflow"
)

var release = "dev" // заполняется при сборке через -ldflags

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("логгер: %v", err)
	}
	defer lg.Closer()
	logger := lg.Sugar

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		logger.Warnw("sentry не инициализирован", "err", err)
	}
	defer flushSentry()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("подключение к БД", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		logger.Fatalw("миграции", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SuperuserEmail != "" {
		if err := db.EnsureSuperuser(ctx, database, cfg.SuperuserEmail, cfg.SuperuserName); err != nil {
			logger.Fatalw("bootstrap суперпользователя", "err", err)
		}
	}

	// каналы уведомлений: лог всегда, телеграм — если настроен
	sinks := []notify.Sink{notify.NewLogSink(logger)}
	if cfg.BotToken != "" && cfg.NotifyChatID != 0 {
		bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			logger.Warnw("телеграм-канал выключен", "err", err)
		} else {
			logger.Infow("телеграм-канал уведомлений включён", "bot", bot.Self.UserName)
			sinks = append(sinks, notify.NewTelegramSink(bot, cfg.NotifyChatID))
		}
	}
	dispatcher := notify.New(database, logger, sinks...)

	engine := workflow.NewEngine(database, dispatcher, logger)

	runner := jobs.New(ctx, logger)
	runner.Every(24*time.Hour, "approval_reminders", jobs.ApprovalReminders(database, dispatcher, cfg.ReminderAge))

	app.StartOps(ctx, cfg.OpsAddr, database)

	api := httpapi.NewServer(database, engine, cfg, logger)
	go func() {
		logger.Infow("API запущен", "addr", cfg.HTTPAddr)
		if err := api.Listen(cfg.HTTPAddr); err != nil {
			logger.Errorw("остановка API", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("получен сигнал завершения")

	if err := api.Shutdown(); err != nil {
		logger.Warnw("shutdown API", "err", err)
	}
	logger.Info("сервер остановлен")
}
