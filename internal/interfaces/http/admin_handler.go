package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharmaops-api/internal/application/dto"
	"github.com/jhoicas/pharmaops-api/internal/application/usecase"
	"github.com/jhoicas/pharmaops-api/pkg/logger"
)

// AdminHandler área de administración de la plataforma.
type AdminHandler struct {
	tenants *usecase.TenantUseCase
	log     *logger.Logger
}

// NewAdminHandler construye el handler de administración.
func NewAdminHandler(tenants *usecase.TenantUseCase, log *logger.Logger) *AdminHandler {
	return &AdminHandler{tenants: tenants, log: log.Named("admin_handler")}
}

// ListTenants godoc
// @Summary      Listar tenants
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "máximo 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.TenantListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/admin/tenants [get]
func (h *AdminHandler) ListTenants(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.tenants.List(c.UserContext(), page)
	if err != nil {
		return internalError(c, h.log, err, "listado de tenants")
	}
	return c.JSON(out)
}
