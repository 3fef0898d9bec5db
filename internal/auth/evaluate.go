package auth

import (
	"github.com/Spok95/student-contracts-backend/internal/models"
)

// Action — вид действия над сущностью, для которого запрашивается доступ.
type Action string

const (
	ContractCreate       Action = "contract_create"
	ContractRead         Action = "contract_read"
	ContractUpdate       Action = "contract_update"
	ContractDelete       Action = "contract_delete"
	ContractSubmit       Action = "contract_submit"
	ContractUnsubmit     Action = "contract_unsubmit"
	ContractFinalApprove Action = "contract_final_approve"

	SuperviseCreate  Action = "supervise_create"
	SuperviseUpdate  Action = "supervise_update"
	SuperviseDelete  Action = "supervise_delete"
	SuperviseApprove Action = "supervise_approve"

	AssessmentCreate Action = "assessment_create"
	AssessmentUpdate Action = "assessment_update"
	AssessmentDelete Action = "assessment_delete"

	AssessmentExamineCreate  Action = "assessment_examine_create"
	AssessmentExamineUpdate  Action = "assessment_examine_update"
	AssessmentExamineDelete  Action = "assessment_examine_delete"
	AssessmentExamineApprove Action = "assessment_examine_approve"

	CourseManage   Action = "course_manage"
	TemplateManage Action = "template_manage"
)

// Caps — набор привилегий актора, разрешается один раз на запрос.
type Caps struct {
	IsSuperuser          bool
	IsConvener           bool
	IsApprovedSupervisor bool
}

func CapsOf(u *models.User) Caps {
	return Caps{
		IsSuperuser:          u.IsSuperuser,
		IsConvener:           u.CanConvene,
		IsApprovedSupervisor: u.CanSupervise,
	}
}

// Relation — вычисленные отношения актора к целевому контракту.
// Evaluate не лезет в хранилище: все booleans считаются заранее.
type Relation struct {
	IsOwner            bool
	IsFormalSupervisor bool
	IsAnySupervisor    bool
	IsNamedSupervisor  bool // актор — руководитель именно этой номинации
	IsNamedExaminer    bool // актор — экзаменатор именно этого назначения
}

// ContractMeta — состояние и подтип целевого контракта.
type ContractMeta struct {
	State models.ContractState
	Type  models.ContractType
}

// Evaluate — таблица решений доступа. Семантика OR: достаточно одного
// выполненного условия. Отказ одинаков для всех причин (не раскрываем,
// существует ли цель; это забота маршрутизации).
func Evaluate(caps Caps, rel Relation, act Action, meta ContractMeta) bool {
	if caps.IsSuperuser {
		return true
	}

	// владелец теряет права на контракт после финального утверждения
	ownerActive := rel.IsOwner && meta.State != models.StateFinalized

	switch act {
	case ContractCreate:
		// любой аутентифицированный пользователь
		return true

	case ContractRead:
		return caps.IsConvener || ownerActive || rel.IsFormalSupervisor

	case ContractUpdate:
		// после подачи содержимое меняется только через операции воркфлоу:
		// согласования давались против конкретного текста
		return caps.IsConvener ||
			(meta.State == models.StateDraft && (rel.IsOwner || rel.IsFormalSupervisor))

	case ContractDelete:
		// руководитель читает и правит, но не удаляет
		return caps.IsConvener || ownerActive

	case ContractSubmit, ContractUnsubmit:
		return rel.IsOwner

	case ContractFinalApprove:
		return caps.IsConvener

	case SuperviseCreate, SuperviseDelete:
		return rel.IsOwner || rel.IsFormalSupervisor

	case SuperviseUpdate:
		return caps.IsConvener || rel.IsOwner || rel.IsFormalSupervisor

	case SuperviseApprove:
		return caps.IsConvener || rel.IsNamedSupervisor

	case AssessmentCreate, AssessmentDelete:
		// фиксированную тройку индивидуального проекта владелец не трогает
		return rel.IsOwner && meta.Type == models.SpecialTopic

	case AssessmentUpdate:
		return rel.IsOwner

	case AssessmentExamineCreate, AssessmentExamineUpdate, AssessmentExamineDelete:
		return caps.IsConvener || rel.IsAnySupervisor

	case AssessmentExamineApprove:
		return caps.IsConvener || rel.IsNamedExaminer

	case CourseManage, TemplateManage:
		return caps.IsConvener
	}
	return false
}
