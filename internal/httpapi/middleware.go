package httpapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Spok95/student-contracts-backend/internal/ctxutil"
	"github.com/Spok95/student-contracts-backend/internal/db"
	"github.com/Spok95/student-contracts-backend/internal/metrics"
	"github.com/Spok95/student-contracts-backend/internal/models"
	"github.com/Spok95/student-contracts-backend/internal/observability"
)

const localsUser = "user"

// requestID — сквозной идентификатор запроса: берём входящий или генерируем.
func (s *Server) requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		c.SetUserContext(ctxutil.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}

func (s *Server) recovery() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				perr := fmt.Errorf("panic в хендлере %s: %v", c.Path(), r)
				observability.CaptureErr(perr)
				s.log.Errorw("panic в хендлере", "path", c.Path(), "panic", r)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "внутренняя ошибка"})
			}
		}()
		return c.Next()
	}
}

func (s *Server) accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		metrics.ObserveHTTP(c.Method(), status)
		reqID, _ := ctxutil.RequestID(c.UserContext())
		s.log.Infow("http",
			"id", reqID,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"dur", time.Since(start),
		)
		return err
	}
}

// authRequired — bearer-JWT. В claims достаточно email (sub);
// пользователь перечитывается из БД на каждый запрос, выключенные
// аккаунты отсекаются сразу.
func (s *Server) authRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(raw, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "нужен bearer-токен"})
		}
		tokenString := strings.TrimPrefix(raw, "Bearer ")

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("неожиданный метод подписи %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "невалидный токен"})
		}
		email, _ := claims["sub"].(string)
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "в токене нет sub"})
		}

		u, err := db.GetUserByEmail(c.UserContext(), s.database, email)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "пользователь не найден"})
		}
		if !u.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "аккаунт выключен"})
		}

		c.Locals(localsUser, u)
		c.SetUserContext(ctxutil.WithUserID(c.UserContext(), u.ID))
		return c.Next()
	}
}

func actorFrom(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(localsUser).(*models.User)
	return u
}
