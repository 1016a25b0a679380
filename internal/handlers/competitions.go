package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/services"
	"gorm.io/gorm"
)

// CompetitionHandler handles competition routes
type CompetitionHandler struct {
	DB *gorm.DB
}

// List handles GET /competitions
// @Summary List competitions
// @Tags Competitions
// @Produce json
// @Success 200 {object} map[string][]models.Competition
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /competitions [get]
func (h *CompetitionHandler) List(c *fiber.Ctx) error {
	return listRecords(c, h.DB, services.Competitions)
}

// Get handles GET /competitions/:id
// @Summary Get a competition
// @Tags Competitions
// @Produce json
// @Param id path string true "Competition id"
// @Success 200 {object} map[string]models.Competition
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /competitions/{id} [get]
func (h *CompetitionHandler) Get(c *fiber.Ctx) error {
	return getRecord(c, h.DB, services.Competitions)
}

// Save handles POST /competitions/save
// @Summary Create a competition
// @Tags Competitions
// @Accept json
// @Produce json
// @Param competition body models.Competition true "Competition"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /competitions/save [post]
func (h *CompetitionHandler) Save(c *fiber.Ctx) error {
	return saveRecord(c, h.DB, services.Competitions)
}

// Edit handles POST /competitions/edit
// @Summary Replace a competition
// @Tags Competitions
// @Accept json
// @Produce json
// @Param competition body models.Competition true "Competition, including _id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /competitions/edit [post]
func (h *CompetitionHandler) Edit(c *fiber.Ctx) error {
	return editRecord(c, h.DB, services.Competitions)
}
