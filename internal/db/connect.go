package db

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(dsn string) (*sql.DB, error) {
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(); err != nil {
		return nil, err
	}
	// лимиты под небольшой сервис; при росте нагрузки — в конфиг
	database.SetMaxOpenConns(20)
	database.SetMaxIdleConns(10)
	database.SetConnMaxIdleTime(60 * time.Second)
	database.SetConnMaxLifetime(10 * time.Minute)
	return database, nil
}
