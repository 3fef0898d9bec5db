package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/Spok95/student-contracts-backend/internal/db"
)

type tokenReq struct {
	Email string `json:"email" validate:"required,email"`
}

// issueToken — подпись dev-токена по email. Маршрут регистрируется
// только при ENV=dev: в проде токены выпускает институтский SSO-шлюз
// с тем же секретом и sub=email.
func (s *Server) issueToken(c *fiber.Ctx) error {
	var req tokenReq
	if err := s.bind(c, &req); err != nil {
		return s.respondErr(c, err)
	}
	u, err := db.GetUserByEmail(c.UserContext(), s.database, req.Email)
	if err != nil {
		return s.respondErr(c, err)
	}
	if !u.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "аккаунт выключен"})
	}

	claims := jwt.MapClaims{
		"sub": u.Email,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return s.respondErr(c, err)
	}
	return c.JSON(fiber.Map{"token": signed})
}
