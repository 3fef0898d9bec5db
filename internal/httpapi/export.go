package httpapi

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/student-contracts-backend/internal/apperr"
	"github.com/Spok95/student-contracts-backend/internal/export"
)

// exportContracts — реестр контрактов в xlsx, доступен конвинеру.
func (s *Server) exportContracts(c *fiber.Ctx) error {
	actor := actorFrom(c)
	if !actor.IsSuperuser && !actor.CanConvene {
		return s.respondErr(c, fmt.Errorf("выгрузка доступна конвинеру: %w", apperr.ErrForbidden))
	}

	wb, err := export.BuildContractsWorkbook(c.UserContext(), s.database)
	if err != nil {
		return s.respondErr(c, err)
	}
	var buf bytes.Buffer
	if err := wb.File.Write(&buf); err != nil {
		return s.respondErr(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.FileName()+`"`)
	return c.Send(buf.Bytes())
}
