package httpapi

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Spok95/student-contracts-backend/internal/config"
	"github.com/Spok95/student-contracts-backend/internal/workflow"
)

// Server — публичный JSON API. Вся авторизация — JWT bearer;
// права на конкретные действия решает auth.Evaluate в хендлерах,
// переходы воркфлоу проверяют себя сами.
type Server struct {
	app      *fiber.App
	database *sql.DB
	engine   *workflow.Engine
	cfg      *config.Config
	log      *zap.SugaredLogger
	validate *validator.Validate
}

func NewServer(database *sql.DB, engine *workflow.Engine, cfg *config.Config, log *zap.SugaredLogger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "student-contracts",
	})

	s := &Server{
		app:      app,
		database: database,
		engine:   engine,
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
	}

	app.Use(s.requestID())
	app.Use(s.recovery())
	app.Use(s.accessLog())

	s.routes()
	return s
}

func (s *Server) routes() {
	// выдача токена: в dev — по email, в prod токены приходят от SSO-шлюза
	if s.cfg.Env == "dev" {
		s.app.Post("/auth/token", s.issueToken)
	}

	api := s.app.Group("/api/v1", s.authRequired())

	api.Get("/me", s.me)

	api.Get("/users", s.listUsers)
	api.Post("/users", s.createUser)
	api.Patch("/users/:id/privileges", s.setUserPrivileges)

	api.Get("/courses", s.listCourses)
	api.Post("/courses", s.createCourse)
	api.Get("/courses/:id", s.getCourse)
	api.Put("/courses/:id", s.updateCourse)
	api.Delete("/courses/:id", s.deleteCourse)

	api.Get("/templates", s.listTemplates)
	api.Post("/templates", s.createTemplate)
	api.Put("/templates/:id", s.updateTemplate)
	api.Delete("/templates/:id", s.deleteTemplate)

	api.Post("/contracts", s.createContract)
	api.Get("/contracts", s.listContracts)
	api.Get("/contracts/:id", s.getContract)
	api.Patch("/contracts/:id", s.updateContract)
	api.Delete("/contracts/:id", s.deleteContract)

	api.Post("/contracts/:id/submit", s.submitContract)
	api.Post("/contracts/:id/unsubmit", s.unsubmitContract)
	api.Post("/contracts/:id/approve", s.finalApproveContract)
	api.Post("/contracts/:id/disapprove", s.finalDisapproveContract)
	api.Get("/contracts/:id/activity", s.contractActivity)

	api.Get("/contracts/:id/supervises", s.listSupervises)
	api.Post("/contracts/:id/supervises", s.createSupervise)
	api.Patch("/supervises/:id", s.updateSupervise)
	api.Delete("/supervises/:id", s.deleteSupervise)
	api.Post("/supervises/:id/approve", s.approveSupervise)
	api.Post("/supervises/:id/disapprove", s.disapproveSupervise)

	api.Get("/contracts/:id/assessments", s.listAssessments)
	api.Post("/contracts/:id/assessments", s.createAssessment)
	api.Patch("/assessments/:id", s.updateAssessment)
	api.Delete("/assessments/:id", s.deleteAssessment)

	api.Get("/contracts/:id/examines", s.listExamines)
	api.Post("/contracts/:id/examines", s.createExamine)
	api.Delete("/examines/:id", s.deleteExamine)

	api.Get("/contracts/:id/assessment-examines", s.listAssessmentExamines)
	api.Post("/assessment-examines", s.createAssessmentExamine)
	api.Delete("/assessment-examines/:id", s.deleteAssessmentExamine)
	api.Post("/assessment-examines/:id/approve", s.approveAssessmentExamine)
	api.Post("/assessment-examines/:id/disapprove", s.disapproveAssessmentExamine)

	api.Get("/export/contracts.xlsx", s.exportContracts)
}

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown() error { return s.app.Shutdown() }
