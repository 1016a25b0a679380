package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/utils"
)

// IdentityHandler proxies user administration to the identity provider.
// Provider failures are logged and answered as empty results.
type IdentityHandler struct {
	Provider services.IdentityProvider
}

// ListUsers handles GET /identity/users
// @Summary List identity provider users
// @Tags Identity
// @Produce json
// @Param X-Identity-Token header string false "Management token; the server token is used when absent"
// @Success 200 {object} map[string][]services.IdentityUser
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /identity/users [get]
func (h *IdentityHandler) ListUsers(c *fiber.Ctx) error {
	users := services.IdentityUsers(c.UserContext(), h.Provider, c.Get(IdentityTokenHeader))
	return utils.SuccessResponse(c, fiber.Map{"users": users}, fiber.StatusOK)
}

// DeleteUser handles DELETE /identity/users/:id
// @Summary Delete an identity provider user
// @Tags Identity
// @Produce json
// @Param id path string true "Identity provider user id"
// @Param X-Identity-Token header string false "Management token; the server token is used when absent"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /identity/users/{id} [delete]
func (h *IdentityHandler) DeleteUser(c *fiber.Ctx) error {
	deleted := services.DeleteIdentityUser(c.UserContext(), h.Provider, c.Get(IdentityTokenHeader), c.Params("id"))
	return utils.SuccessResponse(c, fiber.Map{"deleted": deleted}, fiber.StatusOK)
}

// ListAdmins handles GET /identity/admins
// @Summary List members of the admin role
// @Tags Identity
// @Produce json
// @Param X-Identity-Token header string false "Management token; the server token is used when absent"
// @Success 200 {object} map[string][]services.IdentityUser
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /identity/admins [get]
func (h *IdentityHandler) ListAdmins(c *fiber.Ctx) error {
	admins := services.IdentityAdmins(c.UserContext(), h.Provider, c.Get(IdentityTokenHeader))
	return utils.SuccessResponse(c, fiber.Map{"admins": admins}, fiber.StatusOK)
}
