package models

import "time"

// ActivityAction — фиксированный набор действий журнала.
// Никакой ленивой инициализации из БД: значения известны на этапе компиляции.
type ActivityAction string

const (
	ActionContractCreate       ActivityAction = "contract_create"
	ActionContractUpdate       ActivityAction = "contract_update"
	ActionContractDelete       ActivityAction = "contract_delete"
	ActionContractSubmit       ActivityAction = "contract_submit"
	ActionContractUnsubmit     ActivityAction = "contract_unsubmit"
	ActionContractApprove      ActivityAction = "contract_approve"
	ActionContractDisapprove   ActivityAction = "contract_disapprove"
	ActionSuperviseApprove     ActivityAction = "supervise_approve"
	ActionSuperviseDisapprove  ActivityAction = "supervise_disapprove"
	ActionExamineApprove       ActivityAction = "examine_approve"
	ActionExamineDisapprove    ActivityAction = "examine_disapprove"
)

type ActivityLog struct {
	ID         int64          `db:"id"`
	ActorID    int64          `db:"actor_id"`
	Action     ActivityAction `db:"action"`
	ContractID *int64         `db:"contract_id"`
	TargetKind string         `db:"target_kind"`
	TargetID   int64          `db:"target_id"`
	Message    *string        `db:"message"`
	CreatedAt  time.Time      `db:"created_at"`
}
