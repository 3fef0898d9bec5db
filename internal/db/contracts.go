package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

const contractColumns = `
	id, year, semester, duration, resources, course_id, owner_id, convener_id,
	contract_type, title, objectives, description,
	create_date, submit_date, convener_approval_date`

func scanContract(row interface{ Scan(...any) error }) (*models.Contract, error) {
	var c models.Contract
	err := row.Scan(
		&c.ID, &c.Year, &c.Semester, &c.Duration, &c.Resources, &c.CourseID, &c.OwnerID, &c.ConvenerID,
		&c.Type, &c.Payload.Title, &c.Payload.Objectives, &c.Payload.Description,
		&c.CreateDate, &c.SubmitDate, &c.ConvenerApprovalDate,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Имена стандартных методов оценивания индивидуального проекта.
var defaultAssessmentNames = []string{"report", "artifact", "presentation"}

// CreateContract — создаёт контракт одной транзакцией.
// Для индивидуального проекта сразу создаются три стандартных оценивания
// (report/artifact/presentation) с весами по умолчанию из шаблонов.
func CreateContract(ctx context.Context, database *sql.DB, c models.Contract) (*models.Contract, error) {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO contracts (year, semester, duration, resources, course_id, owner_id,
		                       contract_type, title, objectives, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING`+contractColumns+`
	`, c.Year, c.Semester, c.Duration, c.Resources, c.CourseID, c.OwnerID,
		c.Type, c.Payload.Title, c.Payload.Objectives, c.Payload.Description)

	created, err := scanContract(row)
	if err != nil {
		return nil, fmt.Errorf("создание контракта: %w", err)
	}

	if created.Type == models.IndividualProject {
		for _, name := range defaultAssessmentNames {
			tpl, err := GetTemplateByName(ctx, tx, name)
			if err != nil {
				return nil, fmt.Errorf("шаблон %q: %w", name, err)
			}
			weight := tpl.MinMark
			if tpl.DefaultMark != nil {
				weight = *tpl.DefaultMark
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO assessments (contract_id, template_id, weight)
				VALUES ($1, $2, $3)
			`, created.ID, tpl.ID, weight); err != nil {
				return nil, fmt.Errorf("стандартное оценивание %q: %w", name, translate(err))
			}
		}
	}

	if err := AppendActivity(ctx, tx, models.ActivityLog{
		ActorID:    c.OwnerID,
		Action:     models.ActionContractCreate,
		ContractID: &created.ID,
		TargetKind: "contract",
		TargetID:   created.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func GetContractByID(ctx context.Context, q Querier, id int64) (*models.Contract, error) {
	row := q.QueryRowContext(ctx, `SELECT`+contractColumns+` FROM contracts WHERE id = $1`, id)
	return scanContract(row)
}

// GetContractForUpdate — чтение с блокировкой строки контракта.
// Сериализует конкурирующие переходы воркфлоу по одному контракту.
func GetContractForUpdate(ctx context.Context, q Querier, id int64) (*models.Contract, error) {
	row := q.QueryRowContext(ctx, `SELECT`+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, id)
	return scanContract(row)
}

func ListContracts(ctx context.Context, q Querier) ([]models.Contract, error) {
	rows, err := q.QueryContext(ctx, `SELECT`+contractColumns+` FROM contracts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ListContractsByOwner — контракты конкретного студента.
func ListContractsByOwner(ctx context.Context, q Querier, ownerID int64) ([]models.Contract, error) {
	rows, err := q.QueryContext(ctx, `SELECT`+contractColumns+` FROM contracts WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateContract — правка полей черновика. Подтип (contract_type) не меняется:
// содержимое payload обновляется, тег — никогда. Владелец и дата создания неизменяемы.
func UpdateContract(ctx context.Context, q Querier, c models.Contract) (*models.Contract, error) {
	row := q.QueryRowContext(ctx, `
		UPDATE contracts
		SET year = $1, semester = $2, duration = $3, resources = $4, course_id = $5,
		    title = $6, objectives = $7, description = $8
		WHERE id = $9
		RETURNING`+contractColumns+`
	`, c.Year, c.Semester, c.Duration, c.Resources, c.CourseID,
		c.Payload.Title, c.Payload.Objectives, c.Payload.Description, c.ID)
	updated, err := scanContract(row)
	if err != nil {
		return nil, fmt.Errorf("обновление контракта: %w", err)
	}
	return updated, nil
}

// DeleteContract — каскадно удаляет supervises/assessments/examines/assessment_examines.
func DeleteContract(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление контракта: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ResetContractApprovals — каскадный сброс при отзыве подачи: согласия
// руководителей и подтверждения экзаменаторов давались по поданному
// документу и теряют силу вместе с ним.
func ResetContractApprovals(ctx context.Context, q Querier, contractID int64) error {
	if _, err := q.ExecContext(ctx, `
		UPDATE supervises SET supervisor_approval_date = NULL WHERE contract_id = $1
	`, contractID); err != nil {
		return translate(err)
	}
	if _, err := q.ExecContext(ctx, `
		UPDATE assessment_examines ae
		SET examiner_approval_date = NULL
		FROM assessments a
		WHERE a.id = ae.assessment_id AND a.contract_id = $1
	`, contractID); err != nil {
		return translate(err)
	}
	return nil
}

// SetSubmitDate — только воркфлоу; nil снимает подачу.
func SetSubmitDate(ctx context.Context, q Querier, id int64, at *time.Time) error {
	_, err := q.ExecContext(ctx, `UPDATE contracts SET submit_date = $1 WHERE id = $2`, at, id)
	return translate(err)
}

// SetConvenerApproval — только воркфлоу; approverID и дата либо оба заданы, либо оба NULL.
func SetConvenerApproval(ctx context.Context, q Querier, id int64, approverID *int64, at *time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE contracts SET convener_id = $1, convener_approval_date = $2 WHERE id = $3
	`, approverID, at, id)
	return translate(err)
}
