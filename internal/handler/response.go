package handler

import (
	"encoding/json"
	"net/http"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/logging"
)

const statusSuccess = "SUCCESS"

// Envelope is the body of every successful JSON response.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Envelope{
		Status:  statusSuccess,
		Message: message,
		Data:    data,
	})
}

// respondError renders a domain error. Statuses without a body (401, 404,
// 500) are sent empty.
func respondError(c echo.Context, logger logging.Logger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err,
		)
	}
	if httpErr.Body == nil {
		return c.NoContent(httpErr.StatusCode)
	}
	return c.JSON(httpErr.StatusCode, httpErr.Body)
}

// decodePatch reads a JSON update body into dst after checking that every
// key is in allowed. Nothing is decoded when a key is rejected.
func decodePatch(c echo.Context, allowed []string, dst interface{}) error {
	raw := map[string]json.RawMessage{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &raw); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}

	for key := range raw {
		if !slices.Contains(allowed, key) {
			return apperrors.NewInvalidUpdatesError(allowed)
		}
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	return nil
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator installed on the echo instance.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
