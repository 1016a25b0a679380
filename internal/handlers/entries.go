package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/services"
	"gorm.io/gorm"
)

// EntryHandler handles competition entry routes
type EntryHandler struct {
	DB *gorm.DB
}

// List handles GET /entries
// @Summary List entries
// @Tags Entries
// @Produce json
// @Param schoolId query string false "Submitting school id"
// @Param competitionId query string false "Competition id"
// @Success 200 {object} map[string][]models.Entry
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /entries [get]
func (h *EntryHandler) List(c *fiber.Ctx) error {
	return listRecords(c, h.DB, services.Entries)
}

// Get handles GET /entries/:id
// @Summary Get an entry
// @Tags Entries
// @Produce json
// @Param id path string true "Entry id"
// @Success 200 {object} map[string]models.Entry
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /entries/{id} [get]
func (h *EntryHandler) Get(c *fiber.Ctx) error {
	return getRecord(c, h.DB, services.Entries)
}

// Save handles POST /entries/save
// @Summary Submit an entry
// @Description sportsmenList items may be sportsman ids or objects
// @Tags Entries
// @Accept json
// @Produce json
// @Param entry body models.Entry true "Entry"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /entries/save [post]
func (h *EntryHandler) Save(c *fiber.Ctx) error {
	return saveRecord(c, h.DB, services.Entries)
}

// Edit handles POST /entries/edit
// @Summary Replace an entry
// @Tags Entries
// @Accept json
// @Produce json
// @Param entry body models.Entry true "Entry, including _id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /entries/edit [post]
func (h *EntryHandler) Edit(c *fiber.Ctx) error {
	return editRecord(c, h.DB, services.Entries)
}
