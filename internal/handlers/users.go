// users.go
//
// Record service for sports federation schools, trainers, athletes, competitions and entries
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sportfed.
// sportfed is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sportfed is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sportfed.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles user and session routes
type UserHandler struct {
	DB *gorm.DB
}

// CheckUserRoleRequest is the body of POST /checkUserRole
type CheckUserRoleRequest struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
}

// List handles GET /users
// @Summary List registered users
// @Tags Users
// @Produce json
// @Success 200 {object} map[string][]models.User
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := services.ListUsers(c.UserContext(), h.DB)
	if err != nil {
		return serviceError(c, err, "list.users")
	}
	return utils.SuccessResponse(c, fiber.Map{"users": users}, fiber.StatusOK)
}

// CheckUserRole handles POST /checkUserRole
// @Summary Register a user on first login and report the admin flag
// @Description sub defaults to the caller; only admins may check another user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body CheckUserRoleRequest true "User"
// @Success 200 {object} map[string]bool
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /checkUserRole [post]
func (h *UserHandler) CheckUserRole(c *fiber.Ctx) error {
	var req CheckUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, err, "checkUserRole")
	}

	sess := auth.CurrentSession(c)
	if sess == nil {
		return utils.ForbiddenResponse(c, "no session", "checkUserRole")
	}
	if req.Sub == "" {
		req.Sub = sess.UserID
	}
	if req.Name == "" && req.Sub == sess.UserID {
		req.Name = sess.Name
	}
	if req.Sub != sess.UserID && !sess.IsAdmin {
		return utils.ForbiddenResponse(c, fmt.Sprintf("cannot check the role of %s", req.Sub), "checkUserRole")
	}

	isAdmin, err := services.RegisterUser(c.UserContext(), h.DB, req.Sub, req.Name)
	if err != nil {
		return serviceError(c, err, "checkUserRole")
	}

	if req.Sub == sess.UserID && sess.IsAdmin {
		isAdmin = true
	}
	return utils.SuccessResponse(c, fiber.Map{"isAdmin": isAdmin}, fiber.StatusOK)
}

// Session handles GET /session
// @Summary Get the caller's session claim
// @Tags Users
// @Produce json
// @Success 200 {object} auth.Session
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /session [get]
func (h *UserHandler) Session(c *fiber.Ctx) error {
	sess := auth.CurrentSession(c)
	if sess == nil {
		return utils.ForbiddenResponse(c, "no session", "session")
	}
	return utils.SuccessResponse(c, sess, fiber.StatusOK)
}
