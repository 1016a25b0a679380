package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/services"
	"gorm.io/gorm"
)

// TrainerHandler handles trainer routes
type TrainerHandler struct {
	DB *gorm.DB
}

// List handles GET /trainers
// @Summary List trainers
// @Description List trainers, optionally only those of one school
// @Tags Trainers
// @Produce json
// @Param schoolId query string false "Owning school id"
// @Success 200 {object} map[string][]models.Trainer
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /trainers [get]
func (h *TrainerHandler) List(c *fiber.Ctx) error {
	return listRecords(c, h.DB, services.Trainers)
}

// Get handles GET /trainers/:id
// @Summary Get a trainer
// @Tags Trainers
// @Produce json
// @Param id path string true "Trainer id"
// @Success 200 {object} map[string]models.Trainer
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /trainers/{id} [get]
func (h *TrainerHandler) Get(c *fiber.Ctx) error {
	return getRecord(c, h.DB, services.Trainers)
}

// Save handles POST /saveTrainer
// @Summary Create a trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Param trainer body models.Trainer true "Trainer"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /saveTrainer [post]
func (h *TrainerHandler) Save(c *fiber.Ctx) error {
	return saveRecord(c, h.DB, services.Trainers)
}

// Edit handles POST /editTrainer
// @Summary Replace a trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Param trainer body models.Trainer true "Trainer, including _id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /editTrainer [post]
func (h *TrainerHandler) Edit(c *fiber.Ctx) error {
	return editRecord(c, h.DB, services.Trainers)
}
