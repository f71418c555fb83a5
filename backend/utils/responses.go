package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// MessageResponse is the body of plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Message sends a 200 acknowledgement.
func Message(c *fiber.Ctx, message string) error {
	return c.JSON(MessageResponse{Message: message})
}

// Created sends a 201 Created with data as the body.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

// Error writes err as an ErrorResponse. AppErrors keep their status and
// code, fiber errors keep their status, anything else is a logged 500.
func Error(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= fiber.StatusInternalServerError {
			slog.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", requestID(c),
				"error", err,
			)
		}
		return c.Status(appErr.Status).JSON(ErrorResponse{
			Success: false,
			Error:   http.StatusText(appErr.Status),
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{
			Success: false,
			Error:   http.StatusText(fiberErr.Code),
			Message: fiberErr.Message,
		})
	}

	slog.Error("unhandled error",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", requestID(c),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(fiber.StatusInternalServerError),
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}

// ErrorHandler plugs Error into fiber.Config so handlers can simply return
// service errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return Error(c, err)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
