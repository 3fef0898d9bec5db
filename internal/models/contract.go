package models

import "time"

type ContractType string

const (
	IndividualProject ContractType = "individual_project"
	SpecialTopic      ContractType = "special_topic"
)

// ContractPayload — содержимое подтипа (проект или спецкурс).
// Подтип фиксируется при создании и не меняется.
type ContractPayload struct {
	Title       string `db:"title"`
	Objectives  string `db:"objectives"`
	Description string `db:"description"`
}

type Contract struct {
	ID                   int64        `db:"id"`
	Year                 int          `db:"year"`
	Semester             int          `db:"semester"`
	Duration             int          `db:"duration"`
	Resources            *string      `db:"resources"`
	CourseID             int64        `db:"course_id"`
	OwnerID              int64        `db:"owner_id"`
	ConvenerID           *int64       `db:"convener_id"`
	Type                 ContractType `db:"contract_type"`
	Payload              ContractPayload
	CreateDate           time.Time  `db:"create_date"`
	SubmitDate           *time.Time `db:"submit_date"`
	ConvenerApprovalDate *time.Time `db:"convener_approval_date"`
}

// Состояние выводится из дат, отдельного поля-статуса нет.
func (c *Contract) IsDraft() bool     { return c.SubmitDate == nil }
func (c *Contract) IsSubmitted() bool { return c.SubmitDate != nil && c.ConvenerApprovalDate == nil }
func (c *Contract) IsFinalized() bool { return c.ConvenerApprovalDate != nil }

type ContractState string

const (
	StateDraft     ContractState = "draft"
	StateSubmitted ContractState = "submitted"
	StateFinalized ContractState = "finalized"
)

func (c *Contract) State() ContractState {
	switch {
	case c.ConvenerApprovalDate != nil:
		return StateFinalized
	case c.SubmitDate != nil:
		return StateSubmitted
	default:
		return StateDraft
	}
}
