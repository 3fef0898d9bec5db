package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/student-contracts-backend/internal/ctxutil"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

// StaleSupervise — несогласованная номинация руководителя на контракте,
// который висит на согласовании дольше допустимого.
type StaleSupervise struct {
	Contract  models.Contract
	Supervise models.Supervise
}

type StaleAssessmentExamine struct {
	Contract          models.Contract
	AssessmentExamine models.AssessmentExamine
}

// ListStaleSupervises — номинации без согласия на контрактах, поданных до cutoff.
func ListStaleSupervises(ctx context.Context, database *sql.DB, cutoff time.Time) ([]StaleSupervise, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT c.id, c.year, c.semester, c.duration, c.resources, c.course_id, c.owner_id, c.convener_id,
		       c.contract_type, c.title, c.objectives, c.description,
		       c.create_date, c.submit_date, c.convener_approval_date,
		       s.id, s.contract_id, s.supervisor_id, s.nominator_id, s.is_formal, s.supervisor_approval_date
		FROM supervises s
		JOIN contracts c ON c.id = s.contract_id
		WHERE s.supervisor_approval_date IS NULL
		  AND c.submit_date IS NOT NULL AND c.submit_date <= $1
		  AND c.convener_approval_date IS NULL
		ORDER BY c.id, s.id
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []StaleSupervise
	for rows.Next() {
		var it StaleSupervise
		c, s := &it.Contract, &it.Supervise
		if err := rows.Scan(
			&c.ID, &c.Year, &c.Semester, &c.Duration, &c.Resources, &c.CourseID, &c.OwnerID, &c.ConvenerID,
			&c.Type, &c.Payload.Title, &c.Payload.Objectives, &c.Payload.Description,
			&c.CreateDate, &c.SubmitDate, &c.ConvenerApprovalDate,
			&s.ID, &s.ContractID, &s.SupervisorID, &s.NominatorID, &s.IsFormal, &s.SupervisorApprovalDate,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListStaleAssessmentExamines — неподтверждённые назначения экзаменаторов
// на контрактах, поданных до cutoff.
func ListStaleAssessmentExamines(ctx context.Context, database *sql.DB, cutoff time.Time) ([]StaleAssessmentExamine, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT c.id, c.year, c.semester, c.duration, c.resources, c.course_id, c.owner_id, c.convener_id,
		       c.contract_type, c.title, c.objectives, c.description,
		       c.create_date, c.submit_date, c.convener_approval_date,
		       ae.id, ae.assessment_id, ae.examine_id, e.contract_id, e.examiner_id, ae.examiner_approval_date
		FROM assessment_examines ae
		JOIN examines e ON e.id = ae.examine_id
		JOIN contracts c ON c.id = e.contract_id
		WHERE ae.examiner_approval_date IS NULL
		  AND c.submit_date IS NOT NULL AND c.submit_date <= $1
		  AND c.convener_approval_date IS NULL
		ORDER BY c.id, ae.id
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []StaleAssessmentExamine
	for rows.Next() {
		var it StaleAssessmentExamine
		c, ae := &it.Contract, &it.AssessmentExamine
		if err := rows.Scan(
			&c.ID, &c.Year, &c.Semester, &c.Duration, &c.Resources, &c.CourseID, &c.OwnerID, &c.ConvenerID,
			&c.Type, &c.Payload.Title, &c.Payload.Objectives, &c.Payload.Description,
			&c.CreateDate, &c.SubmitDate, &c.ConvenerApprovalDate,
			&ae.ID, &ae.AssessmentID, &ae.ExamineID, &ae.ContractID, &ae.ExaminerID, &ae.ExaminerApprovalDate,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
