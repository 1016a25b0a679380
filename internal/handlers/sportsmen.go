package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/services"
	"gorm.io/gorm"
)

// SportsmanHandler handles sportsman routes
type SportsmanHandler struct {
	DB *gorm.DB
}

// List handles GET /sportsmen
// @Summary List sportsmen
// @Description List sportsmen, optionally by school and by current trainer
// @Tags Sportsmen
// @Produce json
// @Param schoolId query string false "Owning school id"
// @Param nowTrainer query string false "Current trainer id"
// @Success 200 {object} map[string][]models.Sportsman
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /sportsmen [get]
func (h *SportsmanHandler) List(c *fiber.Ctx) error {
	return listRecords(c, h.DB, services.Sportsmen)
}

// Get handles GET /sportsmen/:id
// @Summary Get a sportsman
// @Tags Sportsmen
// @Produce json
// @Param id path string true "Sportsman id"
// @Success 200 {object} map[string]models.Sportsman
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /sportsmen/{id} [get]
func (h *SportsmanHandler) Get(c *fiber.Ctx) error {
	return getRecord(c, h.DB, services.Sportsmen)
}

// Save handles POST /saveSportsman
// @Summary Create a sportsman
// @Description listResults may be sent as an array or as its JSON text
// @Tags Sportsmen
// @Accept json
// @Produce json
// @Param sportsman body models.Sportsman true "Sportsman"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /saveSportsman [post]
func (h *SportsmanHandler) Save(c *fiber.Ctx) error {
	return saveRecord(c, h.DB, services.Sportsmen)
}

// Edit handles POST /editSportsman
// @Summary Replace a sportsman
// @Tags Sportsmen
// @Accept json
// @Produce json
// @Param sportsman body models.Sportsman true "Sportsman, including _id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /editSportsman [post]
func (h *SportsmanHandler) Edit(c *fiber.Ctx) error {
	return editRecord(c, h.DB, services.Sportsmen)
}
