package db

import (
	"context"
	"fmt"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

const assessmentColumns = `
	a.id, a.contract_id, a.template_id, t.name, a.additional_description, a.due, a.weight`

const assessmentFrom = ` FROM assessments a JOIN assessment_templates t ON t.id = a.template_id`

func scanAssessment(row interface{ Scan(...any) error }) (*models.Assessment, error) {
	var a models.Assessment
	err := row.Scan(&a.ID, &a.ContractID, &a.TemplateID, &a.TemplateName, &a.AdditionalDescription, &a.Due, &a.Weight)
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// checkWeight — вес обязан лежать в [min_mark, max_mark] шаблона.
// Шаблоны — изменяемые справочные данные, поэтому проверяем при каждом сохранении.
func checkWeight(t *models.AssessmentTemplate, weight int) error {
	if weight < t.MinMark || weight > t.MaxMark {
		return fmt.Errorf("вес %d вне диапазона шаблона %q [%d, %d]: %w",
			weight, t.Name, t.MinMark, t.MaxMark, apperr.ErrPrecondition)
	}
	return nil
}

func CreateAssessment(ctx context.Context, q Querier, a models.Assessment) (*models.Assessment, error) {
	tpl, err := GetTemplateByID(ctx, q, a.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("шаблон оценивания: %w", err)
	}
	if err := checkWeight(tpl, a.Weight); err != nil {
		return nil, err
	}
	var id int64
	err = q.QueryRowContext(ctx, `
		INSERT INTO assessments (contract_id, template_id, additional_description, due, weight)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.ContractID, a.TemplateID, a.AdditionalDescription, a.Due, a.Weight).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("создание оценивания: %w", translate(err))
	}
	return GetAssessmentByID(ctx, q, id)
}

func GetAssessmentByID(ctx context.Context, q Querier, id int64) (*models.Assessment, error) {
	row := q.QueryRowContext(ctx, `SELECT`+assessmentColumns+assessmentFrom+` WHERE a.id = $1`, id)
	return scanAssessment(row)
}

func ListAssessmentsByContract(ctx context.Context, q Querier, contractID int64) ([]models.Assessment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT`+assessmentColumns+assessmentFrom+` WHERE a.contract_id = $1 ORDER BY a.id
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateAssessment — правка описания, срока и веса. Шаблон не меняется.
func UpdateAssessment(ctx context.Context, q Querier, a models.Assessment) (*models.Assessment, error) {
	cur, err := GetAssessmentByID(ctx, q, a.ID)
	if err != nil {
		return nil, err
	}
	tpl, err := GetTemplateByID(ctx, q, cur.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("шаблон оценивания: %w", err)
	}
	if err := checkWeight(tpl, a.Weight); err != nil {
		return nil, err
	}
	_, err = q.ExecContext(ctx, `
		UPDATE assessments SET additional_description = $1, due = $2, weight = $3 WHERE id = $4
	`, a.AdditionalDescription, a.Due, a.Weight, a.ID)
	if err != nil {
		return nil, fmt.Errorf("обновление оценивания: %w", translate(err))
	}
	return GetAssessmentByID(ctx, q, a.ID)
}

func DeleteAssessment(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление оценивания: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// CountUnexaminedAssessments — оценивания контракта без хотя бы одного
// подтверждённого назначения экзаменатора. Пока счётчик не ноль,
// финальное согласование заблокировано (оценивание без экзаменатора
// тоже считается непроверенным).
func CountUnexaminedAssessments(ctx context.Context, q Querier, contractID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM assessments a
		WHERE a.contract_id = $1
		  AND NOT EXISTS (
		      SELECT 1 FROM assessment_examines ae
		      WHERE ae.assessment_id = a.id AND ae.examiner_approval_date IS NOT NULL
		  )
	`, contractID).Scan(&n)
	return n, err
}
