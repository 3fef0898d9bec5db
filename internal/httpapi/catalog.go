package httpapi

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/auth"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/models"
)

// authorizeGlobal — действия без целевого контракта (справочники).
func (s *Server) authorizeGlobal(c *fiber.Ctx, act auth.Action) (*models.User, error) {
	actor := actorFrom(c)
	if !auth.Evaluate(auth.CapsOf(actor), auth.Relation{}, act, auth.ContractMeta{}) {
		return nil, apperr.ErrForbidden
	}
	return actor, nil
}

func (s *Server) me(c *fiber.Ctx) error {
	return c.JSON(toUserJSON(actorFrom(c)))
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	users, err := db.ListUsers(c.UserContext(), s.database)
	if err != nil {
		return s.respondErr(c, err)
	}
	out := make([]userJSON, 0, len(users))
	for i := range users {
		out = append(out, toUserJSON(&users[i]))
	}
	return c.JSON(out)
}

type createUserReq struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	CanConvene   bool   `json:"can_convene"`
	CanSupervise bool   `json:"can_supervise"`
}

func (s *Server) createUser(c *fiber.Ctx) error {
	actor := actorFrom(c)
	if !actor.IsSuperuser {
		return s.respondErr(c, fmt.Errorf("пользователей заводит только суперпользователь: %w", apperr.ErrForbidden))
	}
	var req createUserReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	id, err := db.CreateUser(c.UserContext(), s.database, models.User{
		Email:        req.Email,
		Name:         req.Name,
		CanConvene:   req.CanConvene,
		CanSupervise: req.CanSupervise,
		IsActive:     true,
	})
	if err != nil {
		return s.respondErr(c, err)
	}
	u, err := db.GetUserByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUserJSON(u))
}

type privilegesReq struct {
	CanSupervise bool `json:"can_supervise"`
	CanConvene   bool `json:"can_convene"`
}

func (s *Server) setUserPrivileges(c *fiber.Ctx) error {
	actor := actorFrom(c)
	if !actor.IsSuperuser {
		return s.respondErr(c, fmt.Errorf("привилегии меняет только суперпользователь: %w", apperr.ErrForbidden))
	}
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req privilegesReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	if err := db.SetUserPrivileges(c.UserContext(), s.database, id, req.CanSupervise, req.CanConvene); err != nil {
		return s.respondErr(c, err)
	}
	u, err := db.GetUserByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(toUserJSON(u))
}

type courseReq struct {
	CourseNumber string `json:"course_number" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Units        int    `json:"units" validate:"min=1,max=24"`
}

func (s *Server) listCourses(c *fiber.Ctx) error {
	courses, err := db.ListCourses(c.UserContext(), s.database)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(courses)
}

func (s *Server) getCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	course, err := db.GetCourseByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(course)
}

func (s *Server) createCourse(c *fiber.Ctx) error {
	if _, err := s.authorizeGlobal(c, auth.CourseManage); err != nil {
		return s.respondErr(c, err)
	}
	var req courseReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	id, err := db.CreateCourse(c.UserContext(), s.database, models.Course{
		CourseNumber: req.CourseNumber, Name: req.Name, Units: req.Units,
	})
	if err != nil {
		return s.respondErr(c, err)
	}
	course, err := db.GetCourseByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (s *Server) updateCourse(c *fiber.Ctx) error {
	if _, err := s.authorizeGlobal(c, auth.CourseManage); err != nil {
		return s.respondErr(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req courseReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	if err := db.UpdateCourse(c.UserContext(), s.database, models.Course{
		ID: id, CourseNumber: req.CourseNumber, Name: req.Name, Units: req.Units,
	}); err != nil {
		return s.respondErr(c, err)
	}
	course, err := db.GetCourseByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(course)
}

// deleteCourse — курс с контрактами защищён RESTRICT: хранилище вернёт конфликт.
func (s *Server) deleteCourse(c *fiber.Ctx) error {
	if _, err := s.authorizeGlobal(c, auth.CourseManage); err != nil {
		return s.respondErr(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	if err := db.DeleteCourse(c.UserContext(), s.database, id); err != nil {
		return s.respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type templateReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	MinMark     int    `json:"min_mark" validate:"min=0"`
	MaxMark     int    `json:"max_mark" validate:"min=0"`
	DefaultMark *int   `json:"default_mark"`
}

func (s *Server) listTemplates(c *fiber.Ctx) error {
	list, err := db.ListTemplates(c.UserContext(), s.database)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(list)
}

func (s *Server) createTemplate(c *fiber.Ctx) error {
	if _, err := s.authorizeGlobal(c, auth.TemplateManage); err != nil {
		return s.respondErr(c, err)
	}
	var req templateReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	id, err := db.CreateTemplate(c.UserContext(), s.database, models.AssessmentTemplate{
		Name: req.Name, Description: req.Description,
		MinMark: req.MinMark, MaxMark: req.MaxMark, DefaultMark: req.DefaultMark,
	})
	if err != nil {
		return s.respondErr(c, err)
	}
	t, err := db.GetTemplateByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (s *Server) updateTemplate(c *fiber.Ctx) error {
	if _, err := s.authorizeGlobal(c, auth.TemplateManage); err != nil {
		return s.respondErr(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	var req templateReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	if err := db.UpdateTemplate(c.UserContext(), s.database, models.AssessmentTemplate{
		ID: id, Name: req.Name, Description: req.Description,
		MinMark: req.MinMark, MaxMark: req.MaxMark, DefaultMark: req.DefaultMark,
	}); err != nil {
		return s.respondErr(c, err)
	}
	t, err := db.GetTemplateByID(c.UserContext(), s.database, id)
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(t)
}

func (s *Server) deleteTemplate(c *fiber.Ctx) error {
	if _, err := s.authorizeGlobal(c, auth.TemplateManage); err != nil {
		return s.respondErr(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return s.respondErr(c, err)
	}
	if err := db.DeleteTemplate(c.UserContext(), s.database, id); err != nil {
		return s.respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
