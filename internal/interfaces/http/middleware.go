package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/emed-onboarding/internal/application/dto"
)

// HeaderWebhookSignature lleva el HMAC-SHA256 (hex) del cuerpo firmado con el secreto compartido.
const HeaderWebhookSignature = "X-Webhook-Signature"

// RequestLogger adjunta un sublogger con el request id al contexto de usuario y registra cada petición.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		l := base.With().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := l.Info()
		if status >= fiber.StatusInternalServerError {
			ev = l.Error().Err(err)
		}
		ev.Int("status", status).Dur("latency", time.Since(start)).Str("ip", c.IP()).Msg("http")
		return err
	}
}

// RequestTimeout pone un deadline en el contexto de usuario; los use cases lo reciben vía c.UserContext().
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// WebhookSignature verifica la firma HMAC de los socios. Con secreto vacío no verifica nada.
func WebhookSignature(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got, err := hex.DecodeString(strings.TrimSpace(c.Get(HeaderWebhookSignature)))
		if err != nil || len(got) == 0 || !hmac.Equal(got, Sign(secret, c.Body())) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SIGNATURE", Message: "firma del webhook inválida"})
		}
		return c.Next()
	}
}

// Sign calcula el HMAC-SHA256 de body.
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
