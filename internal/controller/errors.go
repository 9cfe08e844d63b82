package controller

import (
	"errors"

	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrIllegalMove), errors.Is(err, model.ErrStaleState),
		errors.Is(err, model.ErrGameFull), errors.Is(err, model.ErrGameClosed),
		errors.Is(err, model.ErrGameNotStarted), errors.Is(err, model.ErrAlreadyQueued):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrInvalidPosition):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// needsRefresh reports whether the client's view of the game is out of date.
func needsRefresh(err error) bool {
	return errors.Is(err, model.ErrIllegalMove) || errors.Is(err, model.ErrNotYourTurn) ||
		errors.Is(err, model.ErrStaleState)
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error":   err.Error(),
		"refresh": needsRefresh(err),
	})
}
