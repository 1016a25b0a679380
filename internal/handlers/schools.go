package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/models"
	"github.com/localnerve/sportfed/internal/services"
	"github.com/localnerve/sportfed/internal/utils"
	"gorm.io/gorm"
)

// SchoolHandler handles school routes
type SchoolHandler struct {
	DB *gorm.DB
}

// List handles GET /schools
// @Summary List schools
// @Tags Schools
// @Produce json
// @Success 200 {object} map[string][]models.School
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /schools [get]
func (h *SchoolHandler) List(c *fiber.Ctx) error {
	return listRecords(c, h.DB, services.Schools)
}

// GetByOwner handles GET /school?userId=
// @Summary Get the school of a user
// @Description Without userId, the school of the calling user
// @Tags Schools
// @Produce json
// @Param userId query string false "Owning user id"
// @Success 200 {object} map[string]models.School
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /school [get]
func (h *SchoolHandler) GetByOwner(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		if sess := auth.CurrentSession(c); sess != nil {
			userID = sess.UserID
		}
	}

	school, err := services.FindSchoolByOwner(c.UserContext(), h.DB, userID)
	if err != nil {
		return serviceError(c, err, "get.school")
	}
	return utils.SuccessResponse(c, fiber.Map{"school": school}, fiber.StatusOK)
}

// Save handles POST /schools/save
// @Summary Create the school of a user
// @Description A user owns at most one school; saving again returns the existing id with affectedRows 0
// @Tags Schools
// @Accept json
// @Produce json
// @Param school body models.School true "School"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /schools/save [post]
func (h *SchoolHandler) Save(c *fiber.Ctx) error {
	var school models.School
	if err := c.BodyParser(&school); err != nil {
		return utils.BadRequestResponse(c, err, "save.school")
	}

	created, id, err := services.SaveSchool(c.UserContext(), h.DB, auth.CurrentSession(c), &school)
	if err != nil {
		return serviceError(c, err, "save.school")
	}

	var rows int64
	if created {
		rows = 1
	}
	return utils.MutationSuccessResponse(c, id, rows)
}

// Edit handles POST /schools/edit
// @Summary Replace a school
// @Tags Schools
// @Accept json
// @Produce json
// @Param school body models.School true "School, including _id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /schools/edit [post]
func (h *SchoolHandler) Edit(c *fiber.Ctx) error {
	var school models.School
	if err := c.BodyParser(&school); err != nil {
		return utils.BadRequestResponse(c, err, "edit.school")
	}

	rows, err := services.EditSchool(c.UserContext(), h.DB, auth.CurrentSession(c), &school)
	if err != nil {
		return serviceError(c, err, "edit.school")
	}
	return utils.MutationSuccessResponse(c, school.ID, rows)
}
