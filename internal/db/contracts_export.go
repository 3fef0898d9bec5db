package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/student-contracts-backend/internal/ctxutil"
)

// ContractRow — плоская строка реестра контрактов для выгрузки в Excel.
type ContractRow struct {
	ID           int64
	Type         string
	Title        string
	CourseName   string
	Semester     int
	Year         int
	OwnerName    string
	OwnerEmail   string
	State        string
	Supervisors  string // «Имя1, Имя2» (согласовавшие помечены ✓)
	Examiners    string
	ConvenerName sql.NullString
	SubmitDate   sql.NullTime
	ApproveDate  sql.NullTime
}

// ListContractRows — реестр контрактов с джойнами для выгрузки.
// Руководители и экзаменаторы сворачиваются в строку на стороне БД.
func ListContractRows(ctx context.Context, database *sql.DB) ([]ContractRow, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT c.id, c.contract_type, c.title,
		       co.name || ' (' || co.course_number || ')',
		       c.semester, c.year,
		       u.name, u.email,
		       CASE
		           WHEN c.convener_approval_date IS NOT NULL THEN 'finalized'
		           WHEN c.submit_date IS NOT NULL THEN 'submitted'
		           ELSE 'draft'
		       END,
		       COALESCE((
		           SELECT string_agg(su.name || CASE WHEN s.supervisor_approval_date IS NOT NULL THEN ' ✓' ELSE '' END, ', ' ORDER BY su.name)
		           FROM supervises s JOIN users su ON su.id = s.supervisor_id
		           WHERE s.contract_id = c.id
		       ), ''),
		       COALESCE((
		           SELECT string_agg(DISTINCT eu.name, ', ')
		           FROM examines e JOIN users eu ON eu.id = e.examiner_id
		           WHERE e.contract_id = c.id
		       ), ''),
		       cu.name,
		       c.submit_date, c.convener_approval_date
		FROM contracts c
		JOIN courses co ON co.id = c.course_id
		JOIN users u ON u.id = c.owner_id
		LEFT JOIN users cu ON cu.id = c.convener_id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ContractRow
	for rows.Next() {
		var r ContractRow
		if err := rows.Scan(
			&r.ID, &r.Type, &r.Title, &r.CourseName, &r.Semester, &r.Year,
			&r.OwnerName, &r.OwnerEmail, &r.State, &r.Supervisors, &r.Examiners,
			&r.ConvenerName, &r.SubmitDate, &r.ApproveDate,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
