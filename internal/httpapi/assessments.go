package httpapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/auth"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func (s *Server) listAssessments(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	if _, _, err := s.authorizeContract(c, contractID, auth.ContractRead); err != nil {
		return s.respondErr(c, err)
	}
	list, err := db.ListAssessmentsByContract(c.UserContext(), s.database, contractID)
	if err != nil {
		return s.respondErr(c, err)
	}
	out := make([]assessmentJSON, 0, len(list))
	for i := range list {
		out = append(out, toAssessmentJSON(&list[i]))
	}
	return c.JSON(out)
}

type createAssessmentReq struct {
	TemplateID            int64      `json:"template_id" validate:"required"`
	Weight                int        `json:"weight" validate:"min=0"`
	Due                   *time.Time `json:"due"`
	AdditionalDescription *string    `json:"additional_description"`
}

func (s *Server) createAssessment(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req createAssessmentReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, contractID, auth.AssessmentCreate)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}

	created, err := db.CreateAssessment(c.UserContext(), s.database, models.Assessment{
		ContractID:            contractID,
		TemplateID:            req.TemplateID,
		Weight:                req.Weight,
		Due:                   req.Due,
		AdditionalDescription: req.AdditionalDescription,
	})
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAssessmentJSON(created))
}

type updateAssessmentReq struct {
	Weight                *int       `json:"weight" validate:"omitempty,min=0"`
	Due                   *time.Time `json:"due"`
	AdditionalDescription *string    `json:"additional_description"`
}

func (s *Server) updateAssessment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req updateAssessmentReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	a, err := db.GetAssessmentByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, a.ContractID, auth.AssessmentUpdate)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}

	if req.Weight != nil {
		a.Weight = *req.Weight
	}
	if req.Due != nil {
		a.Due = req.Due
	}
	if req.AdditionalDescription != nil {
		a.AdditionalDescription = req.AdditionalDescription
	}

	updated, err := db.UpdateAssessment(c.UserContext(), s.database, *a)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toAssessmentJSON(updated))
}

func (s *Server) deleteAssessment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	a, err := db.GetAssessmentByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, a.ContractID, auth.AssessmentDelete)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}
	if err := db.DeleteAssessment(c.UserContext(), s.database, id); err != nil {
		return s.respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
