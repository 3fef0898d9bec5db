//go:build testutil
// +build testutil

package workflow_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
	"github.com/Spok95/student-contracts-backend/internal/testutil/testdb"
	"github.com/Spok95/student-contracts-backend/internal/workflow"
)

func mustUser(t *testing.T, dbx *sql.DB, email, name string, canSupervise, canConvene, super bool) *models.User {
	t.Helper()
	id, err := db.CreateUser(context.Background(), dbx, models.User{
		Email: email, Name: name,
		CanSupervise: canSupervise, CanConvene: canConvene, IsSuperuser: super,
		IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	u, err := db.GetUserByID(context.Background(), dbx, id)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func mustCourse(t *testing.T, dbx *sql.DB) int64 {
	t.Helper()
	id, err := db.CreateCourse(context.Background(), dbx, models.Course{
		CourseNumber: "COMP4560", Name: "Advanced Computing Project", Units: 12,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func mustContract(t *testing.T, dbx *sql.DB, ownerID, courseID int64, typ models.ContractType) *models.Contract {
	t.Helper()
	c, err := db.CreateContract(context.Background(), dbx, models.Contract{
		Year: 2026, Semester: 1, Duration: 2,
		CourseID: courseID, OwnerID: ownerID, Type: typ,
		Payload: models.ContractPayload{Title: "Распределённый кеш", Objectives: "Сделать быстро"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestEngine_IndividualProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	engine := workflow.NewEngine(h.DB, nil, zap.NewNop().Sugar())

	owner := mustUser(t, h.DB, "student@uni.ru", "Студент", false, false, false)
	supervisor := mustUser(t, h.DB, "prof@uni.ru", "Профессор", true, false, false)
	examiner := mustUser(t, h.DB, "exam@uni.ru", "Экзаменатор", false, false, false)
	convener := mustUser(t, h.DB, "conv@uni.ru", "Конвинер", false, true, false)
	courseID := mustCourse(t, h.DB)

	contract := mustContract(t, h.DB, owner.ID, courseID, models.IndividualProject)

	// индивидуальный проект рождается с фиксированной тройкой оцениваний
	assessments, err := db.ListAssessmentsByContract(ctx, h.DB, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(assessments) != 3 {
		t.Fatalf("ожидали 3 стандартных оценивания, получили %d", len(assessments))
	}

	// подача без руководителя — невыполненное предусловие
	if _, err := engine.Submit(ctx, owner, contract.ID); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("ожидали ErrPrecondition, получили %v", err)
	}

	sup, err := db.CreateSupervise(ctx, h.DB, models.Supervise{
		ContractID: contract.ID, SupervisorID: supervisor.ID, NominatorID: &owner.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !sup.IsFormal {
		t.Fatal("руководитель с can_supervise номинируется формальным")
	}

	// у индивидуального проекта ровно один руководитель
	second := mustUser(t, h.DB, "prof2@uni.ru", "Второй профессор", true, false, false)
	if _, err := db.CreateSupervise(ctx, h.DB, models.Supervise{
		ContractID: contract.ID, SupervisorID: second.ID, NominatorID: &owner.ID,
	}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("ожидали ErrConflict, получили %v", err)
	}

	// подать может только владелец
	if _, err := engine.Submit(ctx, supervisor, contract.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden, получили %v", err)
	}
	if _, err := engine.Submit(ctx, owner, contract.ID); err != nil {
		t.Fatal(err)
	}
	// повторная подача запрещена
	if _, err := engine.Submit(ctx, owner, contract.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden на повторную подачу, получили %v", err)
	}

	// назначаем экзаменатора на все три оценивания
	ex, err := db.CreateExamine(ctx, h.DB, models.Examine{
		ContractID: contract.ID, ExaminerID: examiner.ID, NominatorID: &supervisor.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	var aes []*models.AssessmentExamine
	for _, a := range assessments {
		ae, err := db.CreateAssessmentExamine(ctx, h.DB, a.ID, ex.ID)
		if err != nil {
			t.Fatal(err)
		}
		aes = append(aes, ae)
	}

	// экзаменатор действует только после согласия руководителей
	if _, err := engine.ApproveAssessmentExamine(ctx, examiner, aes[0].ID, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden до согласия руководителя, получили %v", err)
	}

	// чужое согласие не принимается
	if _, err := engine.ApproveSupervise(ctx, examiner, sup.ID, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden, получили %v", err)
	}
	if _, err := engine.ApproveSupervise(ctx, supervisor, sup.ID, "беру"); err != nil {
		t.Fatal(err)
	}
	// согласие одноразовое за цикл
	if _, err := engine.ApproveSupervise(ctx, supervisor, sup.ID, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden на повторное согласие, получили %v", err)
	}

	// финальное утверждение раньше времени — предусловие
	if _, err := engine.FinalApprove(ctx, convener, contract.ID); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("ожидали ErrPrecondition, получили %v", err)
	}

	for _, ae := range aes {
		if _, err := engine.ApproveAssessmentExamine(ctx, examiner, ae.ID, ""); err != nil {
			t.Fatal(err)
		}
	}

	// утверждает только конвинер
	if _, err := engine.FinalApprove(ctx, owner, contract.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden, получили %v", err)
	}
	final, err := engine.FinalApprove(ctx, convener, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !final.IsFinalized() {
		t.Fatal("контракт должен быть утверждён")
	}
	if final.ConvenerID == nil || *final.ConvenerID != convener.ID {
		t.Fatal("утвердивший конвинер фиксируется в контракте")
	}

	// утверждённый контракт не утверждается повторно
	if _, err := engine.FinalApprove(ctx, convener, contract.ID); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("ожидали ErrPrecondition, получили %v", err)
	}
}

func TestEngine_UnsubmitResetsApprovals(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	engine := workflow.NewEngine(h.DB, nil, zap.NewNop().Sugar())

	owner := mustUser(t, h.DB, "student@uni.ru", "Студент", false, false, false)
	supervisor := mustUser(t, h.DB, "prof@uni.ru", "Профессор", true, false, false)
	super := mustUser(t, h.DB, "root@uni.ru", "Админ", false, false, true)
	courseID := mustCourse(t, h.DB)
	contract := mustContract(t, h.DB, owner.ID, courseID, models.IndividualProject)

	sup, err := db.CreateSupervise(ctx, h.DB, models.Supervise{
		ContractID: contract.ID, SupervisorID: supervisor.ID, NominatorID: &owner.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Submit(ctx, owner, contract.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.ApproveSupervise(ctx, supervisor, sup.ID, ""); err != nil {
		t.Fatal(err)
	}

	// отзыв подачи доступен только суперпользователю
	if _, err := engine.Unsubmit(ctx, owner, contract.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden, получили %v", err)
	}
	back, err := engine.Unsubmit(ctx, super, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !back.IsDraft() {
		t.Fatal("после отзыва контракт — черновик")
	}

	// согласия давались по поданному документу и сбрасываются каскадно
	got, err := db.GetSuperviseByID(ctx, h.DB, sup.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsApproved() {
		t.Fatal("согласие руководителя должно быть сброшено")
	}
}

func TestEngine_DisapproveOpensNewCycle(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	engine := workflow.NewEngine(h.DB, nil, zap.NewNop().Sugar())

	owner := mustUser(t, h.DB, "student@uni.ru", "Студент", false, false, false)
	supervisor := mustUser(t, h.DB, "prof@uni.ru", "Профессор", true, false, false)
	courseID := mustCourse(t, h.DB)
	contract := mustContract(t, h.DB, owner.ID, courseID, models.SpecialTopic)

	sup, err := db.CreateSupervise(ctx, h.DB, models.Supervise{
		ContractID: contract.ID, SupervisorID: supervisor.ID, NominatorID: &owner.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Submit(ctx, owner, contract.ID); err != nil {
		t.Fatal(err)
	}

	// отказ по несогласованной номинации — тоже нарушение цикла
	if _, err := engine.DisapproveSupervise(ctx, supervisor, sup.ID, "рано"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("ожидали ErrForbidden, получили %v", err)
	}

	if _, err := engine.ApproveSupervise(ctx, supervisor, sup.ID, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.DisapproveSupervise(ctx, supervisor, sup.ID, "передумал"); err != nil {
		t.Fatal(err)
	}
	// после отказа цикл открыт заново
	if _, err := engine.ApproveSupervise(ctx, supervisor, sup.ID, "ладно"); err != nil {
		t.Fatal(err)
	}
}
