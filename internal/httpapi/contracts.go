package httpapi

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/auth"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

// authorizeContract — общий для CRUD-хендлеров путь: контракт, отношения
// актора к нему, таблица решений. Отказ всегда одинаков.
func (s *Server) authorizeContract(c *fiber.Ctx, contractID int64, act auth.Action) (*models.Contract, *models.User, error) {
	actor := actorFrom(c)
	contract, err := db.GetContractByID(c.UserContext(), s.database, contractID)
	if err != nil {
		return nil, nil, err
	}
	rel, err := auth.LoadRelation(c.UserContext(), s.database, contract, actor.ID, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	if !auth.Evaluate(auth.CapsOf(actor), rel, act, auth.MetaOf(contract)) {
		return nil, nil, apperr.ErrForbidden
	}
	return contract, actor, nil
}

// logActivity — записи журнала вне транзакций воркфлоу. Сбой записи
// не валит ответ, но и молча не теряется.
func (s *Server) logActivity(ctx context.Context, entry models.ActivityLog) {
	if err := db.AppendActivity(ctx, s.database, entry); err != nil {
		s.log.Warnw("журнал активности не записан",
			"err", err, "action", entry.Action, "target_kind", entry.TargetKind, "target_id", entry.TargetID)
	}
}

type createContractReq struct {
	Type        string  `json:"type" validate:"required,oneof=individual_project special_topic"`
	Year        int     `json:"year" validate:"required,min=2000,max=2100"`
	Semester    int     `json:"semester" validate:"required,oneof=1 2"`
	Duration    int     `json:"duration" validate:"required,min=1,max=8"`
	CourseID    int64   `json:"course_id" validate:"required"`
	OwnerID     int64   `json:"owner_id"` // только суперпользователь создаёт за другого
	Resources   *string `json:"resources"`
	Title       string  `json:"title" validate:"required"`
	Objectives  string  `json:"objectives"`
	Description string  `json:"description"`
}

func (s *Server) createContract(c *fiber.Ctx) error {
	actor := actorFrom(c)
	var req createContractReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}

	ownerID := actor.ID
	if req.OwnerID != 0 && req.OwnerID != actor.ID {
		if !actor.IsSuperuser {
			return s.respondErr(c, fmt.Errorf("контракт за другого создаёт только суперпользователь: %w", apperr.ErrForbidden))
		}
		ownerID = req.OwnerID
	}

	created, err := db.CreateContract(c.UserContext(), s.database, models.Contract{
		Year:      req.Year,
		Semester:  req.Semester,
		Duration:  req.Duration,
		Resources: req.Resources,
		CourseID:  req.CourseID,
		OwnerID:   ownerID,
		Type:      models.ContractType(req.Type),
		Payload: models.ContractPayload{
			Title:       req.Title,
			Objectives:  req.Objectives,
			Description: req.Description,
		},
	})
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toContractJSON(created))
}

// listContracts — конвинер и суперпользователь видят реестр целиком,
// остальные — только свои контракты.
func (s *Server) listContracts(c *fiber.Ctx) error {
	actor := actorFrom(c)
	var (
		out []models.Contract
		err error
	)
	if actor.IsSuperuser || actor.CanConvene {
		out, err = db.ListContracts(c.UserContext(), s.database)
	} else {
		out, err = db.ListContractsByOwner(c.UserContext(), s.database, actor.ID)
	}
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toContractsJSON(out))
}

func (s *Server) getContract(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, _, err := s.authorizeContract(c, id, auth.ContractRead)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toContractJSON(contract))
}

type updateContractReq struct {
	Year        *int    `json:"year" validate:"omitempty,min=2000,max=2100"`
	Semester    *int    `json:"semester" validate:"omitempty,oneof=1 2"`
	Duration    *int    `json:"duration" validate:"omitempty,min=1,max=8"`
	CourseID    *int64  `json:"course_id"`
	Resources   *string `json:"resources"`
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Objectives  *string `json:"objectives"`
	Description *string `json:"description"`
}

func (s *Server) updateContract(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req updateContractReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	contract, actor, err := s.authorizeContract(c, id, auth.ContractUpdate)
	if err != nil {
		return s.respondErr(c, err)
	}

	if req.Year != nil {
		contract.Year = *req.Year
	}
	if req.Semester != nil {
		contract.Semester = *req.Semester
	}
	if req.Duration != nil {
		contract.Duration = *req.Duration
	}
	if req.CourseID != nil {
		contract.CourseID = *req.CourseID
	}
	if req.Resources != nil {
		contract.Resources = req.Resources
	}
	if req.Title != nil {
		contract.Payload.Title = *req.Title
	}
	if req.Objectives != nil {
		contract.Payload.Objectives = *req.Objectives
	}
	if req.Description != nil {
		contract.Payload.Description = *req.Description
	}

	updated, err := db.UpdateContract(c.UserContext(), s.database, *contract)
	if err != nil {
		return s.respondErr(c, err)
	}
	s.logActivity(c.UserContext(), models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionContractUpdate,
		ContractID: &updated.ID, TargetKind: "contract", TargetID: updated.ID,
	})
	return c.JSON(toContractJSON(updated))
}

func (s *Server) deleteContract(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	_, actor, err := s.authorizeContract(c, id, auth.ContractDelete)
	if err != nil {
		return s.respondErr(c, err)
	}
	if err := db.DeleteContract(c.UserContext(), s.database, id); err != nil {
		return s.respondErr(c, err)
	}
	s.logActivity(c.UserContext(), models.ActivityLog{
		ActorID: actor.ID, Action: models.ActionContractDelete,
		TargetKind: "contract", TargetID: id,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) submitContract(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, err := s.engine.Submit(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toContractJSON(contract))
}

func (s *Server) unsubmitContract(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, err := s.engine.Unsubmit(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toContractJSON(contract))
}

func (s *Server) finalApproveContract(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	contract, err := s.engine.FinalApprove(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toContractJSON(contract))
}

type messageReq struct {
	Message string `json:"message"`
}

func (s *Server) finalDisapproveContract(c *fiber.Ctx) error {
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
	contract, err := s.engine.FinalDisapprove(c.UserContext(), actorFrom(c), id, req.Message)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toContractJSON(contract))
}

func (s *Server) contractActivity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	if _, _, err := s.authorizeContract(c, id, auth.ContractRead); err != nil {
		return s.respondErr(c, err)
	}
	entries, err := db.ListActivityByContract(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	out := make([]activityJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityJSON{
			ID: e.ID, ActorID: e.ActorID, Action: string(e.Action),
			ContractID: e.ContractID, TargetKind: e.TargetKind, TargetID: e.TargetID,
			Message: e.Message, CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(out)
}
