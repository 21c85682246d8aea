package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

const internalMessage = "error interno, intente de nuevo más tarde"

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func invalidBody(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
}

// internalError registra la causa y responde 500 sin exponerla.
func internalError(c *fiber.Ctx, log *logger.Logger, err error, msg string) error {
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg(msg)
	return errorJSON(c, fiber.StatusInternalServerError, "INTERNAL", internalMessage)
}
