package utils

import (
	"errors"
	"net/http"

	"fixoo-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithJSON writes payload as a JSON response.
func RespondWithJSON(c echo.Context, code int, payload interface{}) error {
	return c.JSON(code, payload)
}

// RespondWithError writes a JSON error body with the given status code.
func RespondWithError(c echo.Context, code int, message string) error {
	return c.JSON(code, models.ErrorResponse{Message: message})
}

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
// Anything unrecognized is a 500 with a generic message; the detail stays in
// the server log.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, models.ErrUnauthorized):
		return RespondWithError(c, http.StatusForbidden, "not permitted")
	case errors.Is(err, models.ErrInvalidTransition):
		return RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidState):
		return RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, err.Error())
	default:
		c.Logger().Errorf("internal error: %v", err)
		return RespondWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

// ExtractUserInfo returns the authenticated user's id and role, placed into
// the context by the JWT middleware.
func ExtractUserInfo(c echo.Context) (string, models.Role, error) {
	userID, _ := c.Get("userID").(string)
	role, _ := c.Get("userRole").(models.Role)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication context")
	}
	return userID, role, nil
}
