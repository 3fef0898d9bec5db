package auth_test

import (
	"testing"

	"github.com/Spok95/student-contracts-backend/internal/auth"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func meta(state models.ContractState, typ models.ContractType) auth.ContractMeta {
	return auth.ContractMeta{State: state, Type: typ}
}

func TestEvaluate_SuperuserBypass(t *testing.T) {
	caps := auth.Caps{IsSuperuser: true}
	acts := []auth.Action{
		auth.ContractCreate, auth.ContractRead, auth.ContractUpdate, auth.ContractDelete,
		auth.ContractSubmit, auth.ContractUnsubmit, auth.ContractFinalApprove,
		auth.SuperviseCreate, auth.SuperviseUpdate, auth.SuperviseDelete, auth.SuperviseApprove,
		auth.AssessmentCreate, auth.AssessmentUpdate, auth.AssessmentDelete,
		auth.AssessmentExamineCreate, auth.AssessmentExamineDelete, auth.AssessmentExamineApprove,
		auth.CourseManage, auth.TemplateManage,
	}
	for _, act := range acts {
		if !auth.Evaluate(caps, auth.Relation{}, act, meta(models.StateFinalized, models.SpecialTopic)) {
			t.Errorf("суперпользователь должен проходить %s", act)
		}
	}
}

func TestEvaluate_OwnerLifecycle(t *testing.T) {
	owner := auth.Relation{IsOwner: true}

	cases := []struct {
		name  string
		act   auth.Action
		state models.ContractState
		want  bool
	}{
		{"чтение черновика", auth.ContractRead, models.StateDraft, true},
		{"правка черновика", auth.ContractUpdate, models.StateDraft, true},
		{"правка поданного", auth.ContractUpdate, models.StateSubmitted, false},
		{"правка утверждённого", auth.ContractUpdate, models.StateFinalized, false},
		{"удаление черновика", auth.ContractDelete, models.StateDraft, true},
		{"удаление утверждённого", auth.ContractDelete, models.StateFinalized, false},
		{"подача", auth.ContractSubmit, models.StateDraft, true},
		{"финальное утверждение", auth.ContractFinalApprove, models.StateSubmitted, false},
	}
	for _, tc := range cases {
		got := auth.Evaluate(auth.Caps{}, owner, tc.act, meta(tc.state, models.IndividualProject))
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvaluate_ConvenerAndSupervisor(t *testing.T) {
	convener := auth.Caps{IsConvener: true}
	formal := auth.Relation{IsFormalSupervisor: true, IsAnySupervisor: true}

	if !auth.Evaluate(convener, auth.Relation{}, auth.ContractFinalApprove, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("конвинер утверждает контракт")
	}
	if auth.Evaluate(auth.Caps{}, formal, auth.ContractFinalApprove, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("руководитель не утверждает контракт")
	}
	if !auth.Evaluate(convener, auth.Relation{}, auth.ContractRead, meta(models.StateFinalized, models.IndividualProject)) {
		t.Error("конвинер читает и утверждённый контракт")
	}
	if !auth.Evaluate(auth.Caps{}, formal, auth.ContractUpdate, meta(models.StateDraft, models.IndividualProject)) {
		t.Error("формальный руководитель правит контракт")
	}
	// поданный текст заморожен: правки владельца и руководителя только
	// после возврата в черновик, конвинер правит в любом состоянии
	if auth.Evaluate(auth.Caps{}, formal, auth.ContractUpdate, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("руководитель не правит поданный контракт")
	}
	if !auth.Evaluate(convener, auth.Relation{}, auth.ContractUpdate, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("конвинер правит поданный контракт")
	}
	if auth.Evaluate(auth.Caps{}, formal, auth.ContractDelete, meta(models.StateDraft, models.IndividualProject)) {
		t.Error("руководитель не удаляет контракт")
	}
	// номинации руководителей: владелец и формальный руководитель, но не конвинер
	if auth.Evaluate(convener, auth.Relation{}, auth.SuperviseCreate, meta(models.StateDraft, models.IndividualProject)) {
		t.Error("конвинер не номинирует руководителей")
	}
	if !auth.Evaluate(auth.Caps{}, formal, auth.SuperviseCreate, meta(models.StateDraft, models.IndividualProject)) {
		t.Error("формальный руководитель номинирует руководителей")
	}
}

func TestEvaluate_NamedApprovals(t *testing.T) {
	named := auth.Relation{IsNamedSupervisor: true}
	other := auth.Relation{IsAnySupervisor: true}

	if !auth.Evaluate(auth.Caps{}, named, auth.SuperviseApprove, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("номинированный руководитель даёт согласие")
	}
	if auth.Evaluate(auth.Caps{}, other, auth.SuperviseApprove, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("чужую номинацию согласовывать нельзя")
	}

	examiner := auth.Relation{IsNamedExaminer: true}
	if !auth.Evaluate(auth.Caps{}, examiner, auth.AssessmentExamineApprove, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("назначенный экзаменатор подтверждает назначение")
	}
	if auth.Evaluate(auth.Caps{}, auth.Relation{}, auth.AssessmentExamineApprove, meta(models.StateSubmitted, models.IndividualProject)) {
		t.Error("посторонний не подтверждает назначение")
	}
}

func TestEvaluate_AssessmentsBySubtype(t *testing.T) {
	owner := auth.Relation{IsOwner: true}

	// фиксированная тройка индивидуального проекта: состав не меняется
	if auth.Evaluate(auth.Caps{}, owner, auth.AssessmentCreate, meta(models.StateDraft, models.IndividualProject)) {
		t.Error("оценивания индивидуального проекта не добавляются")
	}
	if auth.Evaluate(auth.Caps{}, owner, auth.AssessmentDelete, meta(models.StateDraft, models.IndividualProject)) {
		t.Error("оценивания индивидуального проекта не удаляются")
	}
	if !auth.Evaluate(auth.Caps{}, owner, auth.AssessmentCreate, meta(models.StateDraft, models.SpecialTopic)) {
		t.Error("владелец спецтемы добавляет оценивания")
	}
	// веса и сроки правит владелец в обоих подтипах
	if !auth.Evaluate(auth.Caps{}, owner, auth.AssessmentUpdate, meta(models.StateDraft, models.IndividualProject)) {
		t.Error("владелец правит вес оценивания")
	}
}

func TestEvaluate_Catalog(t *testing.T) {
	if !auth.Evaluate(auth.Caps{IsConvener: true}, auth.Relation{}, auth.CourseManage, auth.ContractMeta{}) {
		t.Error("конвинер управляет курсами")
	}
	if auth.Evaluate(auth.Caps{IsApprovedSupervisor: true}, auth.Relation{}, auth.TemplateManage, auth.ContractMeta{}) {
		t.Error("руководитель не управляет шаблонами")
	}
}
