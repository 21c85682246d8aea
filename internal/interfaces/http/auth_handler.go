package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmaops-api/internal/application/auth"
	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/application/usecase"
	"github.com/jhoicas/pharmaops-api/internal/domain"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

// AuthHandler maneja registro, login y perfil.
type AuthHandler struct {
	uc    *auth.AuthUseCase
	users *usecase.UserUseCase
	log   *logger.Logger
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, users *usecase.UserUseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, users: users, log: log.Named("auth_handler")}
}

// Register godoc
// @Summary      Registrar organización y usuario
// @Description  Crea el tenant y su primer usuario en una sola transacción.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "name, email, password, organizationName"
// @Success      201   {object}  dto.RegisterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	user, err := h.uc.Register(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			return errorJSON(c, fiber.StatusBadRequest, "EMAIL_EXISTS", "el email ya está registrado")
		case errors.Is(err, domain.ErrDuplicate):
			return errorJSON(c, fiber.StatusBadRequest, "ORGANIZATION_EXISTS", "ya existe una organización con ese nombre")
		case errors.Is(err, domain.ErrInvalidInput):
			return errorJSON(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
		}
		return internalError(c, h.log, err, "registro fallido")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		Message: "usuario registrado",
		User:    *user,
	})
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return errorJSON(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUnauthorized):
			return errorJSON(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas")
		case errors.Is(err, domain.ErrForbidden):
			return errorJSON(c, fiber.StatusForbidden, "FORBIDDEN", "cuenta inactiva o suspendida")
		}
		return internalError(c, h.log, err, "login fallido")
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.users.Me(c.UserContext(), GetUserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "USER_NOT_FOUND", "usuario no encontrado")
		}
		return internalError(c, h.log, err, "consulta de perfil")
	}
	return c.JSON(out)
}
