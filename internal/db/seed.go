package db

import (
	"context"
	"database/sql"
	"log"
)

// EnsureSuperuser — создаёт (или повышает) суперпользователя из ENV при старте.
// Идемпотентно: повторный запуск ничего не ломает.
func EnsureSuperuser(ctx context.Context, database *sql.DB, email, name string) error {
	if email == "" {
		return nil
	}
	_, err := database.ExecContext(ctx, `
		INSERT INTO users (email, name, is_superuser, can_convene, can_supervise)
		VALUES ($1, $2, TRUE, TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE SET is_superuser = TRUE
	`, email, name)
	if err != nil {
		log.Println("ошибка создания суперпользователя:", err)
		return err
	}
	return nil
}
