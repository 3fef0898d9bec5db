package db

import (
	"context"
	"fmt"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func CreateCourse(ctx context.Context, q Querier, c models.Course) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO courses (course_number, name, units)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.CourseNumber, c.Name, c.Units).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("создание курса: %w", translate(err))
	}
	return id, nil
}

func GetCourseByID(ctx context.Context, q Querier, id int64) (*models.Course, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, course_number, name, units FROM courses WHERE id = $1
	`, id)
	var c models.Course
	if err := row.Scan(&c.ID, &c.CourseNumber, &c.Name, &c.Units); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func ListCourses(ctx context.Context, q Querier) ([]models.Course, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, course_number, name, units FROM courses ORDER BY course_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Course
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.CourseNumber, &c.Name, &c.Units); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func UpdateCourse(ctx context.Context, q Querier, c models.Course) error {
	res, err := q.ExecContext(ctx, `
		UPDATE courses SET course_number = $1, name = $2, units = $3 WHERE id = $4
	`, c.CourseNumber, c.Name, c.Units, c.ID)
	if err != nil {
		return fmt.Errorf("обновление курса: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteCourse — курс, на который ссылаются контракты, удалить нельзя (RESTRICT).
func DeleteCourse(ctx context.Context, q Querier, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("удаление курса: %w", translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
