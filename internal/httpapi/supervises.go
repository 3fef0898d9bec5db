package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/auth"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

func (s *Server) listSupervises(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	if _, _, err := s.authorizeContract(c, contractID, auth.ContractRead); err != nil {
		return s.respondErr(c, err)
	}
	sups, err := db.ListSupervisesByContract(c.UserContext(), s.database, contractID)
	if err != nil {
		return s.respondErr(c, err)
	}
	out := make([]superviseJSON, 0, len(sups))
	for i := range sups {
		out = append(out, toSuperviseJSON(&sups[i]))
	}
	return c.JSON(out)
}

type createSuperviseReq struct {
	SupervisorID int64 `json:"supervisor_id" validate:"required"`
}

func (s *Server) createSupervise(c *fiber.Ctx) error {
	contractID, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req createSuperviseReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	contract, actor, err := s.authorizeContract(c, contractID, auth.SuperviseCreate)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}

	created, err := db.CreateSupervise(c.UserContext(), s.database, models.Supervise{
		ContractID:   contractID,
		SupervisorID: req.SupervisorID,
		NominatorID:  &actor.ID,
	})
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSuperviseJSON(created))
}

type updateSuperviseReq struct {
	SupervisorID int64 `json:"supervisor_id" validate:"required"`
}

// updateSupervise — замена руководителя в номинации. Согласие, данное
// прежним руководителем, при замене сбрасывается.
func (s *Server) updateSupervise(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req updateSuperviseReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	sup, err := db.GetSuperviseByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, sup.ContractID, auth.SuperviseUpdate)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}

	updated, err := db.UpdateSuperviseSupervisor(c.UserContext(), s.database, id, req.SupervisorID)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toSuperviseJSON(updated))
}

func (s *Server) deleteSupervise(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	sup, err := db.GetSuperviseByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, sup.ContractID, auth.SuperviseDelete)
	if err != nil {
		return s.respondErr(c, err)
	}
	if contract.IsFinalized() {
		return s.respondErr(c, fmt.Errorf("утверждённый контракт неизменяем: %w", apperr.ErrForbidden))
	}
	if err := db.DeleteSupervise(c.UserContext(), s.database, id); err != nil {
		return s.respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) approveSupervise(c *fiber.Ctx) error {
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
	sup, err := s.engine.ApproveSupervise(c.UserContext(), actorFrom(c), id, req.Message)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toSuperviseJSON(sup))
}

func (s *Server) disapproveSupervise(c *fiber.Ctx) error {
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
	sup, err := s.engine.DisapproveSupervise(c.UserContext(), actorFrom(c), id, req.Message)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toSuperviseJSON(sup))
}
