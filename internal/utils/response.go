package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponseStruct is the envelope of every failed request
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// SuccessResponseStruct answers a save or edit of a record
type SuccessResponseStruct struct {
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	ID           string `json:"id"`
	Timestamp    string `json:"timestamp"`
	AffectedRows int64  `json:"affectedRows"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends data as the JSON body
func SuccessResponse(c *fiber.Ctx, data any, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// ForbiddenResponse sends a 403 response
func ForbiddenResponse(c *fiber.Ctx, message, errorType string) error {
	return ErrorResponse(c, message, fiber.StatusForbidden, errorType)
}

// BadRequestResponse reports a request body that could not be decoded
func BadRequestResponse(c *fiber.Ctx, err error, errorType string) error {
	return ErrorResponse(c, "Invalid request body: "+err.Error(), fiber.StatusBadRequest, errorType)
}

// MutationSuccessResponse reports the record id and how many rows changed
func MutationSuccessResponse(c *fiber.Ctx, id string, affectedRows int64) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:      "Success",
		Ok:           true,
		ID:           id,
		Timestamp:    timestamp(),
		AffectedRows: affectedRows,
	})
}
