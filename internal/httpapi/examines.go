package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/auth"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func (s *Server) listExamines(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	if _, _, err := s.authorizeContract(c, contractID, auth.ContractRead); err != nil {
		return s.respondErr(c, err)
	}
	list, err := db.ListExaminesByContract(c.UserContext(), s.database, contractID)
	if err != nil {
		return s.respondErr(c, err)
	}
	out := make([]examineJSON, 0, len(list))
	for _, e := range list {
		out = append(out, examineJSON{ID: e.ID, ContractID: e.ContractID, ExaminerID: e.ExaminerID, NominatorID: e.NominatorID})
	}
	return c.JSON(out)
}

type createExamineReq struct {
	ExaminerID int64 `json:"examiner_id" validate:"required"`
}

func (s *Server) createExamine(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req createExamineReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	contract, actor, err := s.authorizeContract(c, contractID, auth.AssessmentExamineCreate)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}

	created, err := db.CreateExamine(c.UserContext(), s.database, models.Examine{
		ContractID:  contractID,
		ExaminerID:  req.ExaminerID,
		NominatorID: &actor.ID,
	})
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(examineJSON{
		ID: created.ID, ContractID: created.ContractID, ExaminerID: created.ExaminerID, NominatorID: created.NominatorID,
	})
}

func (s *Server) deleteExamine(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	ex, err := db.GetExamineByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, ex.ContractID, auth.AssessmentExamineDelete)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}
	if err := db.DeleteExamine(c.UserContext(), s.database, id); err != nil {
		return s.respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listAssessmentExamines(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	if _, _, err := s.authorizeContract(c, contractID, auth.ContractRead); err != nil {
		return s.respondErr(c, err)
	}
	list, err := db.ListAssessmentExaminesByContract(c.UserContext(), s.database, contractID)
	if err != nil {
		return s.respondErr(c, err)
	}
	out := make([]assessmentExamineJSON, 0, len(list))
	for i := range list {
		out = append(out, toAssessmentExamineJSON(&list[i]))
	}
	return c.JSON(out)
}

type createAssessmentExamineReq struct {
	AssessmentID int64 `json:"assessment_id" validate:"required"`
	ExamineID    int64 `json:"examine_id" validate:"required"`
}

// createAssessmentExamine — привязка экзаменатора к конкретному оцениванию.
// Принадлежность оценивания и номинации одному контракту проверяет хранилище.
func (s *Server) createAssessmentExamine(c *fiber.Ctx) error {
	var req createAssessmentExamineReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	a, err := db.GetAssessmentByID(c.UserContext(), s.database, req.AssessmentID)
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, a.ContractID, auth.AssessmentExamineCreate)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}

	created, err := db.CreateAssessmentExamine(c.UserContext(), s.database, req.AssessmentID, req.ExamineID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAssessmentExamineJSON(created))
}

func (s *Server) deleteAssessmentExamine(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	ae, err := db.GetAssessmentExamineByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, ae.ContractID, auth.AssessmentExamineDelete)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}
	if err := db.DeleteAssessmentExamine(c.UserContext(), s.database, id); err != nil {
		return s.respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) approveAssessmentExamine(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req messageReq
	if len(c.Body()) > 0 {
		if err := s.bind(c, &req); err != nil {
			return s.respondErr(c, err)
		}
	}
	ae, err := s.engine.ApproveAssessmentExamine(c.UserContext(), actorFrom(c), id, req.Message)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toAssessmentExamineJSON(ae))
}

func (s *Server) disapproveAssessmentExamine(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req messageReq
	if len(c.Body()) > 0 {
		if err := s.bind(c, &req); err != nil {
			return s.respondErr(c, err)
		}
	}
	ae, err := s.engine.DisapproveAssessmentExamine(c.UserContext(), actorFrom(c), id, req.Message)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toAssessmentExamineJSON(ae))
}
