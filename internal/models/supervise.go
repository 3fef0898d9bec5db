package models

import "time"

type Supervise struct {
	ID                     int64      `db:"id"`
	ContractID             int64      `db:"contract_id"`
	SupervisorID           int64      `db:"supervisor_id"`
	NominatorID            *int64     `db:"nominator_id"`
	IsFormal               bool       `db:"is_formal"`
	SupervisorApprovalDate *time.Time `db:"supervisor_approval_date"`
}

func (s *Supervise) IsApproved() bool { return s.SupervisorApprovalDate != nil }
