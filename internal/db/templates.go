package db

import (
	"context"
	"fmt"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func CreateTemplate(ctx context.Context, q Querier, t models.AssessmentTemplate) (int64, error) {
	if t.MinMark > t.MaxMark {
		return 0, fmt.Errorf("min_mark больше max_mark: %w", apperr.ErrPrecondition)
	}
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO assessment_templates (name, description, max_mark, min_mark, default_mark)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, t.Name, t.Description, t.MaxMark, t.MinMark, t.DefaultMark).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("создание шаблона: %w", translate(err))
	}
	return id, nil
}

func GetTemplateByID(ctx context.Context, q Querier, id int64) (*models.AssessmentTemplate, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, description, max_mark, min_mark, default_mark
		FROM assessment_templates WHERE id = $1
	`, id)
	var t models.AssessmentTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.MaxMark, &t.MinMark, &t.DefaultMark); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func GetTemplateByName(ctx context.Context, q Querier, name string) (*models.AssessmentTemplate, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, description, max_mark, min_mark, default_mark
		FROM assessment_templates WHERE name = $1
	`, name)
	var t models.AssessmentTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.MaxMark, &t.MinMark, &t.DefaultMark); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func ListTemplates(ctx context.Context, q Querier) ([]models.AssessmentTemplate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, description, max_mark, min_mark, default_mark
		FROM assessment_templates ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AssessmentTemplate
	for rows.Next() {
		var t models.AssessmentTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.MaxMark, &t.MinMark, &t.DefaultMark); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func UpdateTemplate(ctx context.Context, q Querier, t models.AssessmentTemplate) error {
	if t.MinMark > t.MaxMark {
		return fmt.Errorf("min_mark больше max_mark: %w", apperr.ErrPrecondition)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE assessment_templates
		SET name = $1, description = $2, max_mark = $3, min_mark = $4, default_mark = $5
		WHERE id = $6
	`, t.Name, t.Description, t.MaxMark, t.MinMark, t.DefaultMark, t.ID)
	if err != nil {
		return fmt.Errorf("обновление шаблона: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteTemplate — шаблон, привязанный к оцениванию, удалить нельзя (RESTRICT).
func DeleteTemplate(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM assessment_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление шаблона: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
