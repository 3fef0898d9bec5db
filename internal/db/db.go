package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
)

// Querier покрывает *sql.DB и *sql.Tx: одни и те же функции хранилища
// работают и сами по себе, и внутри транзакции воркфлоу.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translate — переводит ошибку драйвера в доменную.
// Уникальность → конфликт; FK/RESTRICT → конфликт (сущность используется);
// CHECK → невыполненное предусловие.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	code := ""
	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		code = pgxErr.Code
	case errors.As(err, &pqErr):
		// тестовый стенд ходит через lib/pq
		code = string(pqErr.Code)
	}
	switch code {
	case pgUniqueViolation:
		return apperr.ErrConflict
	case pgForeignKeyViolation:
		return apperr.ErrConflict
	case pgCheckViolation:
		return apperr.ErrPrecondition
	}
	return err
}
