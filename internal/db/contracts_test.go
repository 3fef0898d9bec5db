//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
	"github.com/Spok95/student-contracts-backend/internal/testutil/testdb"
)

func seedUser(t *testing.T, dbx *sql.DB, email string, canSupervise bool) int64 {
	t.Helper()
	id, err := db.CreateUser(context.Background(), dbx, models.User{
		Email: email, Name: email, CanSupervise: canSupervise, IsActive: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func seedCourse(t *testing.T, dbx *sql.DB, number string) int64 {
	t.Helper()
	id, err := db.CreateCourse(context.Background(), dbx, models.Course{
		CourseNumber: number, Name: "Курс " + number, Units: 6,
	})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func seedContract(t *testing.T, dbx *sql.DB, ownerID, courseID int64, typ models.ContractType) *models.Contract {
	t.Helper()
	c, err := db.CreateContract(context.Background(), dbx, models.Contract{
		Year: 2026, Semester: 2, Duration: 1,
		CourseID: courseID, OwnerID: ownerID, Type: typ,
		Payload: models.ContractPayload{Title: "Тема"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestAssessmentWeight_TemplateRange(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	ownerID := seedUser(t, h.DB, "student@uni.ru", false)
	courseID := seedCourse(t, h.DB, "COMP3770")
	contract := seedContract(t, h.DB, ownerID, courseID, models.SpecialTopic)

	tplID, err := db.CreateTemplate(ctx, h.DB, models.AssessmentTemplate{
		Name: "защита", MinMark: 45, MaxMark: 90,
	})
	if err != nil {
		t.Fatal(err)
	}

	// вес за пределами шаблона — невыполненное предусловие
	if _, err := db.CreateAssessment(ctx, h.DB, models.Assessment{
		ContractID: contract.ID, TemplateID: tplID, Weight: 100,
	}); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("ожидали ErrPrecondition, получили %v", err)
	}

	a, err := db.CreateAssessment(ctx, h.DB, models.Assessment{
		ContractID: contract.ID, TemplateID: tplID, Weight: 60,
	})
	if err != nil {
		t.Fatal(err)
	}

	// то же правило при обновлении
	a.Weight = 10
	if _, err := db.UpdateAssessment(ctx, h.DB, *a); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("ожидали ErrPrecondition, получили %v", err)
	}

	// шаблон с min > max не создаётся
	if _, err := db.CreateTemplate(ctx, h.DB, models.AssessmentTemplate{
		Name: "кривой", MinMark: 50, MaxMark: 10,
	}); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("ожидали ErrPrecondition, получили %v", err)
	}
}

func TestAssessmentExamine_CrossContractIntegrity(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	ownerID := seedUser(t, h.DB, "student@uni.ru", false)
	examinerID := seedUser(t, h.DB, "exam@uni.ru", false)
	courseID := seedCourse(t, h.DB, "COMP3770")

	c1 := seedContract(t, h.DB, ownerID, courseID, models.IndividualProject)
	c2 := seedContract(t, h.DB, ownerID, courseID, models.IndividualProject)

	a1, err := db.ListAssessmentsByContract(ctx, h.DB, c1.ID)
	if err != nil {
		t.Fatal(err)
	}
	ex2, err := db.CreateExamine(ctx, h.DB, models.Examine{ContractID: c2.ID, ExaminerID: examinerID})
	if err != nil {
		t.Fatal(err)
	}

	// оценивание и номинация из разных контрактов — порча данных, не валидация
	if _, err := db.CreateAssessmentExamine(ctx, h.DB, a1[0].ID, ex2.ID); !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("ожидали ErrIntegrity, получили %v", err)
	}
}

func TestDeleteContract_CascadesAndCourseProtected(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	ownerID := seedUser(t, h.DB, "student@uni.ru", false)
	supID := seedUser(t, h.DB, "prof@uni.ru", true)
	examinerID := seedUser(t, h.DB, "exam@uni.ru", false)
	courseID := seedCourse(t, h.DB, "COMP3770")
	contract := seedContract(t, h.DB, ownerID, courseID, models.IndividualProject)

	if _, err := db.CreateSupervise(ctx, h.DB, models.Supervise{
		ContractID: contract.ID, SupervisorID: supID,
	}); err != nil {
		t.Fatal(err)
	}
	assessments, err := db.ListAssessmentsByContract(ctx, h.DB, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	ex, err := db.CreateExamine(ctx, h.DB, models.Examine{ContractID: contract.ID, ExaminerID: examinerID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateAssessmentExamine(ctx, h.DB, assessments[0].ID, ex.ID); err != nil {
		t.Fatal(err)
	}

	// курс с контрактами защищён от удаления
	if err := db.DeleteCourse(ctx, h.DB, courseID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("ожидали ErrConflict, получили %v", err)
	}

	if err := db.DeleteContract(ctx, h.DB, contract.ID); err != nil {
		t.Fatal(err)
	}

	sups, err := db.ListSupervisesByContract(ctx, h.DB, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	rest, err := db.ListAssessmentsByContract(ctx, h.DB, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sups) != 0 || len(rest) != 0 {
		t.Fatal("зависимые записи должны удаляться каскадно")
	}

	// без контрактов курс удаляется
	if err := db.DeleteCourse(ctx, h.DB, courseID); err != nil {
		t.Fatal(err)
	}
}

func TestCreateSupervise_DuplicateNomination(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	ownerID := seedUser(t, h.DB, "student@uni.ru", false)
	supID := seedUser(t, h.DB, "prof@uni.ru", true)
	courseID := seedCourse(t, h.DB, "COMP3770")
	contract := seedContract(t, h.DB, ownerID, courseID, models.SpecialTopic)

	if _, err := db.CreateSupervise(ctx, h.DB, models.Supervise{
		ContractID: contract.ID, SupervisorID: supID,
	}); err != nil {
		t.Fatal(err)
	}
	// повторная номинация того же руководителя — конфликт уникальности
	if _, err := db.CreateSupervise(ctx, h.DB, models.Supervise{
		ContractID: contract.ID, SupervisorID: supID,
	}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("ожидали ErrConflict, получили %v", err)
	}
}
