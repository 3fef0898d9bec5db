package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

const superviseColumns = `
	id, contract_id, supervisor_id, nominator_id, is_formal, supervisor_approval_date`

func scanSupervise(row interface{ Scan(...any) error }) (*models.Supervise, error) {
	var s models.Supervise
	err := row.Scan(&s.ID, &s.ContractID, &s.SupervisorID, &s.NominatorID, &s.IsFormal, &s.SupervisorApprovalDate)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// CreateSupervise — номинация руководителя. Транзакция с блокировкой контракта:
// лимит "один руководитель у индивидуального проекта" проверяется без гонок.
// is_formal выводится из привилегии can_supervise номинируемого, не из запроса.
func CreateSupervise(ctx context.Context, database *sql.DB, s models.Supervise) (*models.Supervise, error) {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	contract, err := GetContractForUpdate(ctx, tx, s.ContractID)
	if err != nil {
		return nil, err
	}

	if contract.Type == models.IndividualProject {
		var cnt int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM supervises WHERE contract_id = $1`, s.ContractID,
		).Scan(&cnt); err != nil {
			return nil, err
		}
		if cnt >= 1 {
			return nil, fmt.Errorf("у индивидуального проекта может быть только один руководитель: %w", apperr.ErrConflict)
		}
	}

	supervisor, err := GetUserByID(ctx, tx, s.SupervisorID)
	if err != nil {
		return nil, fmt.Errorf("номинируемый руководитель: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO supervises (contract_id, supervisor_id, nominator_id, is_formal)
		VALUES ($1, $2, $3, $4)
		RETURNING`+superviseColumns+`
	`, s.ContractID, s.SupervisorID, s.NominatorID, supervisor.CanSupervise)
	created, err := scanSupervise(row)
	if err != nil {
		return nil, fmt.Errorf("номинация руководителя: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func GetSuperviseByID(ctx context.Context, q Querier, id int64) (*models.Supervise, error) {
	row := q.QueryRowContext(ctx, `SELECT`+superviseColumns+` FROM supervises WHERE id = $1`, id)
	return scanSupervise(row)
}

func ListSupervisesByContract(ctx context.Context, q Querier, contractID int64) ([]models.Supervise, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT`+superviseColumns+` FROM supervises WHERE contract_id = $1 ORDER BY id
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Supervise
	for rows.Next() {
		s, err := scanSupervise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateSuperviseSupervisor — замена руководителя в номинации.
// is_formal пересчитывается, полученное ранее согласие сбрасывается:
// оно относилось к другому человеку. Номинатор неизменяем.
func UpdateSuperviseSupervisor(ctx context.Context, q Querier, id, supervisorID int64) (*models.Supervise, error) {
	supervisor, err := GetUserByID(ctx, q, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("новый руководитель: %w", err)
	}
	row := q.QueryRowContext(ctx, `
		UPDATE supervises
		SET supervisor_id = $1, is_formal = $2, supervisor_approval_date = NULL
		WHERE id = $3
		RETURNING`+superviseColumns+`
	`, supervisorID, supervisor.CanSupervise, id)
	updated, err := scanSupervise(row)
	if err != nil {
		return nil, fmt.Errorf("обновление номинации: %w", err)
	}
	return updated, nil
}

func DeleteSupervise(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM supervises WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление номинации: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetSuperviseApproval — только воркфлоу; nil снимает согласие.
func SetSuperviseApproval(ctx context.Context, q Querier, id int64, at *time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE supervises SET supervisor_approval_date = $1 WHERE id = $2
	`, at, id)
	return translate(err)
}

// CountPendingSupervises — номинации контракта без согласия руководителя.
func CountPendingSupervises(ctx context.Context, q Querier, contractID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM supervises
		WHERE contract_id = $1 AND supervisor_approval_date IS NULL
	`, contractID).Scan(&n)
	return n, err
}

// CountSupervises — все номинации контракта.
func CountSupervises(ctx context.Context, q Querier, contractID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM supervises WHERE contract_id = $1
	`, contractID).Scan(&n)
	return n, err
}

// IsSupervisorOf — состоит ли пользователь в руководителях контракта.
// formalOnly=true дополнительно требует формального статуса; для индивидуального
// проекта единственный руководитель всегда считается формальным.
func IsSupervisorOf(ctx context.Context, q Querier, contractID, userID int64, formalOnly bool) (bool, error) {
	var q1 string
	if formalOnly {
		q1 = `
			SELECT COUNT(*)
			FROM supervises s
			JOIN contracts c ON c.id = s.contract_id
			WHERE s.contract_id = $1 AND s.supervisor_id = $2
			  AND (s.is_formal OR c.contract_type = 'individual_project')`
	} else {
		q1 = `SELECT COUNT(*) FROM supervises WHERE contract_id = $1 AND supervisor_id = $2`
	}
	var n int
	if err := q.QueryRowContext(ctx, q1, contractID, userID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
