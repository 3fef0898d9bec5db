package models

import "time"

type Examine struct {
	ID          int64  `db:"id"`
	ContractID  int64  `db:"contract_id"`
	ExaminerID  int64  `db:"examiner_id"`
	NominatorID *int64 `db:"nominator_id"`
}

// AssessmentExamine — назначение экзаменатора на конкретный метод оценивания.
// Инвариант: assessment и examine принадлежат одному контракту.
type AssessmentExamine struct {
	ID                   int64      `db:"id"`
	AssessmentID         int64      `db:"assessment_id"`
	ExamineID            int64      `db:"examine_id"`
	ContractID           int64      `db:"contract_id"`
	ExaminerID           int64      `db:"examiner_id"`
	ExaminerApprovalDate *time.Time `db:"examiner_approval_date"`
}

func (ae *AssessmentExamine) IsApproved() bool { return ae.ExaminerApprovalDate != nil }
