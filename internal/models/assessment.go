package models

import "time"

type AssessmentTemplate struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	MaxMark     int    `db:"max_mark" json:"max_mark"`
	MinMark     int    `db:"min_mark" json:"min_mark"`
	DefaultMark *int   `db:"default_mark" json:"default_mark,omitempty"`
}

type Assessment struct {
	ID                    int64      `db:"id"`
	ContractID            int64      `db:"contract_id"`
	TemplateID            int64      `db:"template_id"`
	TemplateName          string     `db:"template_name"`
	AdditionalDescription *string    `db:"additional_description"`
	Due                   *time.Time `db:"due"`
	Weight                int        `db:"weight"`
}
