// common.go
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
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/models"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/utils"
	"gorm.io/gorm"
)

// IdentityTokenHeader carries a caller-supplied identity provider management token
const IdentityTokenHeader = "X-Identity-Token"

// serviceError renders a service failure. Forbidden operations are 403,
// everything else (malformed ids included) is a generic 500.
func serviceError(c *fiber.Ctx, err error, errorType string) error {
	if errors.Is(err, services.ErrForbidden) {
		return utils.ForbiddenResponse(c, err.Error(), errorType)
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}

// listRecords answers {<plural>: [...]} filtered by the kind's allowed query parameters
func listRecords[T any](c *fiber.Ctx, db *gorm.DB, kind services.Kind[T]) error {
	records, err := kind.List(c.UserContext(), db, c.Queries())
	if err != nil {
		return serviceError(c, err, "list."+kind.Plural)
	}
	return utils.SuccessResponse(c, fiber.Map{kind.Plural: records}, fiber.StatusOK)
}

// getRecord answers {<name>: record}, with a null record when there is none
func getRecord[T any](c *fiber.Ctx, db *gorm.DB, kind services.Kind[T]) error {
	record, err := kind.Get(c.UserContext(), db, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "get."+kind.Name)
	}
	return utils.SuccessResponse(c, fiber.Map{kind.Name: record}, fiber.StatusOK)
}

// saveRecord creates a record from the request body
func saveRecord[T any](c *fiber.Ctx, db *gorm.DB, kind services.Kind[T]) error {
	var record T
	if err := c.BodyParser(&record); err != nil {
		return utils.BadRequestResponse(c, err, "save."+kind.Name)
	}

	id, err := kind.Create(c.UserContext(), db, &record)
	if err != nil {
		return serviceError(c, err, "save."+kind.Name)
	}
	return utils.MutationSuccessResponse(c, id, 1)
}

// editRecord replaces the record named by the body's _id
func editRecord[T any](c *fiber.Ctx, db *gorm.DB, kind services.Kind[T]) error {
	var record T
	if err := c.BodyParser(&record); err != nil {
		return utils.BadRequestResponse(c, err, "edit."+kind.Name)
	}

	id := recordID(&record)
	rows, err := kind.Update(c.UserContext(), db, id, &record)
	if err != nil {
		return serviceError(c, err, "edit."+kind.Name)
	}
	return utils.MutationSuccessResponse(c, id, rows)
}

func recordID(record any) string {
	if r, ok := record.(models.Identified); ok {
		return r.RecordID()
	}
	return ""
}
