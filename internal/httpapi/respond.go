package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/observability"
)

// respondErr — единая точка перевода доменных ошибок в HTTP-статусы.
// Integrity — это повреждение данных: отдаём 500 и шлём в Sentry.
func (s *Server) respondErr(c *fiber.Ctx, err error) error {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "невалидный запрос", "fields": fieldErrors(verr)})
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}

	switch {
	case errors.Is(err, apperr.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrPrecondition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "не найдено"})
	case errors.Is(err, apperr.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	observability.CaptureErr(err)
	s.log.Errorw("необработанная ошибка", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "внутренняя ошибка"})
}

func fieldErrors(verr validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verr))
	for _, fe := range verr {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// parseID — числовой path-параметр.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}

func (s *Server) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "невалидный JSON")
	}
	return s.validate.Struct(dst)
}
