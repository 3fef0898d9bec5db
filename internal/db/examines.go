package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func CreateExamine(ctx context.Context, q Querier, e models.Examine) (*models.Examine, error) {
	row := q.QueryRowContext(ctx, `
		INSERT INTO examines (contract_id, examiner_id, nominator_id)
		VALUES ($1, $2, $3)
		RETURNING id, contract_id, examiner_id, nominator_id
	`, e.ContractID, e.ExaminerID, e.NominatorID)
	var created models.Examine
	if err := row.Scan(&created.ID, &created.ContractID, &created.ExaminerID, &created.NominatorID); err != nil {
		return nil, fmt.Errorf("номинация экзаменатора: %w", translate(err))
	}
	return &created, nil
}

func GetExamineByID(ctx context.Context, q Querier, id int64) (*models.Examine, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, contract_id, examiner_id, nominator_id FROM examines WHERE id = $1
	`, id)
	var e models.Examine
	if err := row.Scan(&e.ID, &e.ContractID, &e.ExaminerID, &e.NominatorID); err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func ListExaminesByContract(ctx context.Context, q Querier, contractID int64) ([]models.Examine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, contract_id, examiner_id, nominator_id
		FROM examines WHERE contract_id = $1 ORDER BY id
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Examine
	for rows.Next() {
		var e models.Examine
		if err := rows.Scan(&e.ID, &e.ContractID, &e.ExaminerID, &e.NominatorID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func DeleteExamine(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM examines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление номинации экзаменатора: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

const aeColumns = `
	ae.id, ae.assessment_id, ae.examine_id, a.contract_id, e.examiner_id, ae.examiner_approval_date`

const aeFrom = `
	FROM assessment_examines ae
	JOIN assessments a ON a.id = ae.assessment_id
	JOIN examines e ON e.id = ae.examine_id`

func scanAssessmentExamine(row interface{ Scan(...any) error }) (*models.AssessmentExamine, error) {
	var ae models.AssessmentExamine
	err := row.Scan(&ae.ID, &ae.AssessmentID, &ae.ExamineID, &ae.ContractID, &ae.ExaminerID, &ae.ExaminerApprovalDate)
	if err != nil {
		return nil, translate(err)
	}
	return &ae, nil
}

// CreateAssessmentExamine — связывает оценивание с назначением экзаменатора.
// Оценивание и назначение обязаны принадлежать одному контракту; расхождение —
// нарушение целостности данных, а не ошибка прав, и не зависит от актора.
func CreateAssessmentExamine(ctx context.Context, database *sql.DB, assessmentID, examineID int64) (*models.AssessmentExamine, error) {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	a, err := GetAssessmentByID(ctx, tx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("оценивание: %w", err)
	}
	e, err := GetExamineByID(ctx, tx, examineID)
	if err != nil {
		return nil, fmt.Errorf("назначение экзаменатора: %w", err)
	}
	if a.ContractID != e.ContractID {
		return nil, fmt.Errorf("оценивание контракта %d и экзаменатор контракта %d: %w",
			a.ContractID, e.ContractID, apperr.ErrIntegrity)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO assessment_examines (assessment_id, examine_id)
		VALUES ($1, $2)
		RETURNING id
	`, assessmentID, examineID).Scan(&id); err != nil {
		return nil, fmt.Errorf("назначение на оценивание: %w", translate(err))
	}

	created, err := GetAssessmentExamineByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func GetAssessmentExamineByID(ctx context.Context, q Querier, id int64) (*models.AssessmentExamine, error) {
	row := q.QueryRowContext(ctx, `SELECT`+aeColumns+aeFrom+` WHERE ae.id = $1`, id)
	return scanAssessmentExamine(row)
}

func ListAssessmentExaminesByContract(ctx context.Context, q Querier, contractID int64) ([]models.AssessmentExamine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT`+aeColumns+aeFrom+` WHERE a.contract_id = $1 ORDER BY ae.id
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AssessmentExamine
	for rows.Next() {
		ae, err := scanAssessmentExamine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ae)
	}
	return out, rows.Err()
}

func DeleteAssessmentExamine(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM assessment_examines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление назначения: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// SetAssessmentExamineApproval — только воркфлоу; nil снимает подтверждение.
func SetAssessmentExamineApproval(ctx context.Context, q Querier, id int64, at *time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE assessment_examines SET examiner_approval_date = $1 WHERE id = $2
	`, at, id)
	return translate(err)
}

// CountPendingAssessmentExamines — назначения контракта без подтверждения экзаменатора.
func CountPendingAssessmentExamines(ctx context.Context, q Querier, contractID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*)`+aeFrom+`
		WHERE a.contract_id = $1 AND ae.examiner_approval_date IS NULL
	`, contractID).Scan(&n)
	return n, err
}
