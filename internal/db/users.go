package db

import (
	"context"
	"fmt"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func CreateUser(ctx context.Context, q Querier, u models.User) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (email, name, is_superuser, can_convene, can_supervise, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, u.Email, u.Name, u.IsSuperuser, u.CanConvene, u.CanSupervise, u.IsActive).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("создание пользователя: %w", translate(err))
	}
	return id, nil
}

func GetUserByID(ctx context.Context, q Querier, id int64) (*models.User, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, email, name, is_superuser, can_convene, can_supervise, is_active
		FROM users WHERE id = $1
	`, id)
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsSuperuser, &u.CanConvene, &u.CanSupervise, &u.IsActive); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func GetUserByEmail(ctx context.Context, q Querier, email string) (*models.User, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, email, name, is_superuser, can_convene, can_supervise, is_active
		FROM users WHERE email = $1
	`, email)
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsSuperuser, &u.CanConvene, &u.CanSupervise, &u.IsActive); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func ListUsers(ctx context.Context, q Querier) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, email, name, is_superuser, can_convene, can_supervise, is_active
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.IsSuperuser, &u.CanConvene, &u.CanSupervise, &u.IsActive); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListSupervisorUsers — пользователи-руководители контракта (для рассылки).
func ListSupervisorUsers(ctx context.Context, q Querier, contractID int64) ([]models.User, error) {
	return listUsersByJoin(ctx, q, `
		SELECT u.id, u.email, u.name, u.is_superuser, u.can_convene, u.can_supervise, u.is_active
		FROM users u JOIN supervises s ON s.supervisor_id = u.id
		WHERE s.contract_id = $1 ORDER BY u.id
	`, contractID)
}

// ListExaminerUsers — пользователи-экзаменаторы контракта (для рассылки).
func ListExaminerUsers(ctx context.Context, q Querier, contractID int64) ([]models.User, error) {
	return listUsersByJoin(ctx, q, `
		SELECT u.id, u.email, u.name, u.is_superuser, u.can_convene, u.can_supervise, u.is_active
		FROM users u JOIN examines e ON e.examiner_id = u.id
		WHERE e.contract_id = $1 ORDER BY u.id
	`, contractID)
}

func listUsersByJoin(ctx context.Context, q Querier, query string, contractID int64) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.IsSuperuser, &u.CanConvene, &u.CanSupervise, &u.IsActive); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetUserPrivileges — обновление институтских привилегий (can_supervise / can_convene).
func SetUserPrivileges(ctx context.Context, q Querier, id int64, canSupervise, canConvene bool) error {
	res, err := q.ExecContext(ctx, `
		UPDATE users SET can_supervise = $1, can_convene = $2 WHERE id = $3
	`, canSupervise, canConvene, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("пользователь %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
