package httpapi

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
)

func testServer() *Server {
	return &Server{
		log:      zap.NewNop().Sugar(),
		validate: validator.New(),
	}
}

func TestRespondErr_StatusMapping(t *testing.T) {
	s := testServer()

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("нельзя: %w", apperr.ErrForbidden), fiber.StatusForbidden},
		{fmt.Errorf("рано: %w", apperr.ErrPrecondition), fiber.StatusBadRequest},
		{apperr.ErrNotFound, fiber.StatusNotFound},
		{fmt.Errorf("дубль: %w", apperr.ErrConflict), fiber.StatusConflict},
		{apperr.ErrIntegrity, fiber.StatusInternalServerError},
		{fmt.Errorf("что-то сломалось"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		app := fiber.New()
		app.Get("/x", func(c *fiber.Ctx) error {
			return s.respondErr(c, tc.err)
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("%v: got %d, want %d", tc.err, resp.StatusCode, tc.want)
		}
	}
}

func TestBind_ValidationFails(t *testing.T) {
	s := testServer()

	app := fiber.New()
	app.Post("/contracts", func(c *fiber.Ctx) error {
		var req createContractReq
		if err := s.bind(c, &req); err != nil {
			return s.respondErr(c, err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	body := `{"type":"weird_type","year":2026,"semester":1,"duration":2,"course_id":1,"title":"x"}`
	req := httptest.NewRequest("POST", "/contracts", strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("неизвестный подтип должен давать 400, получили %d", resp.StatusCode)
	}
}
