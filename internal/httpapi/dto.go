package httpapi

import (
	"time"

	"github.com/Spok95/student-contracts-backend/internal/models"
)

type contractJSON struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	State       string  `json:"state"`
	Year        int     `json:"year"`
	Semester    int     `json:"semester"`
	Duration    int     `json:"duration"`
	Resources   *string `json:"resources,omitempty"`
	CourseID    int64   `json:"course_id"`
	OwnerID     int64   `json:"owner_id"`
	ConvenerID  *int64  `json:"convener_id,omitempty"`
	Title       string  `json:"title"`
	Objectives  string  `json:"objectives"`
	Description string  `json:"description"`

	CreateDate           time.Time  `json:"create_date"`
	SubmitDate           *time.Time `json:"submit_date,omitempty"`
	ConvenerApprovalDate *time.Time `json:"convener_approval_date,omitempty"`
}

func toContractJSON(c *models.Contract) contractJSON {
	return contractJSON{
		ID:                   c.ID,
		Type:                 string(c.Type),
		State:                string(c.State()),
		Year:                 c.Year,
		Semester:             c.Semester,
		Duration:             c.Duration,
		Resources:            c.Resources,
		CourseID:             c.CourseID,
		OwnerID:              c.OwnerID,
		ConvenerID:           c.ConvenerID,
		Title:                c.Payload.Title,
		Objectives:           c.Payload.Objectives,
		Description:          c.Payload.Description,
		CreateDate:           c.CreateDate,
		SubmitDate:           c.SubmitDate,
		ConvenerApprovalDate: c.ConvenerApprovalDate,
	}
}

func toContractsJSON(cs []models.Contract) []contractJSON {
	out := make([]contractJSON, 0, len(cs))
	for i := range cs {
		out = append(out, toContractJSON(&cs[i]))
	}
	return out
}

type superviseJSON struct {
	ID                     int64      `json:"id"`
	ContractID             int64      `json:"contract_id"`
	SupervisorID           int64      `json:"supervisor_id"`
	NominatorID            *int64     `json:"nominator_id,omitempty"`
	IsFormal               bool       `json:"is_formal"`
	SupervisorApprovalDate *time.Time `json:"supervisor_approval_date,omitempty"`
}

func toSuperviseJSON(s *models.Supervise) superviseJSON {
	return superviseJSON{
		ID:                     s.ID,
		ContractID:             s.ContractID,
		SupervisorID:           s.SupervisorID,
		NominatorID:            s.NominatorID,
		IsFormal:               s.IsFormal,
		SupervisorApprovalDate: s.SupervisorApprovalDate,
	}
}

type assessmentJSON struct {
	ID                    int64      `json:"id"`
	ContractID            int64      `json:"contract_id"`
	TemplateID            int64      `json:"template_id"`
	TemplateName          string     `json:"template_name,omitempty"`
	AdditionalDescription *string    `json:"additional_description,omitempty"`
	Due                   *time.Time `json:"due,omitempty"`
	Weight                int        `json:"weight"`
}

func toAssessmentJSON(a *models.Assessment) assessmentJSON {
	return assessmentJSON{
		ID:                    a.ID,
		ContractID:            a.ContractID,
		TemplateID:            a.TemplateID,
		TemplateName:          a.TemplateName,
		AdditionalDescription: a.AdditionalDescription,
		Due:                   a.Due,
		Weight:                a.Weight,
	}
}

type examineJSON struct {
	ID          int64  `json:"id"`
	ContractID  int64  `json:"contract_id"`
	ExaminerID  int64  `json:"examiner_id"`
	NominatorID *int64 `json:"nominator_id,omitempty"`
}

type assessmentExamineJSON struct {
	ID                   int64      `json:"id"`
	AssessmentID         int64      `json:"assessment_id"`
	ExamineID            int64      `json:"examine_id"`
	ContractID           int64      `json:"contract_id"`
	ExaminerID           int64      `json:"examiner_id"`
	ExaminerApprovalDate *time.Time `json:"examiner_approval_date,omitempty"`
}

func toAssessmentExamineJSON(ae *models.AssessmentExamine) assessmentExamineJSON {
	return assessmentExamineJSON{
		ID:                   ae.ID,
		AssessmentID:         ae.AssessmentID,
		ExamineID:            ae.ExamineID,
		ContractID:           ae.ContractID,
		ExaminerID:           ae.ExaminerID,
		ExaminerApprovalDate: ae.ExaminerApprovalDate,
	}
}

type userJSON struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	IsSuperuser  bool   `json:"is_superuser"`
	CanConvene   bool   `json:"can_convene"`
	CanSupervise bool   `json:"can_supervise"`
	IsActive     bool   `json:"is_active"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		IsSuperuser:  u.IsSuperuser,
		CanConvene:   u.CanConvene,
		CanSupervise: u.CanSupervise,
		IsActive:     u.IsActive,
	}
}

type activityJSON struct {
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	Action     string    `json:"action"`
	ContractID *int64    `json:"contract_id,omitempty"`
	TargetKind string    `json:"target_kind"`
	TargetID   int64     `json:"target_id"`
	Message    *string   `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
