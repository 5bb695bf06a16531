package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskmanager/internal/auth"
	"taskmanager/internal/avatar"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/logging"
	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

var allowedUserUpdates = []string{"name", "email", "password", "age"}

// UserHandler handles account, session and avatar endpoints.
type UserHandler struct {
	users   service.UserService
	avatars service.AvatarService
	logger  logging.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService, avatars service.AvatarService, logger logging.Logger) *UserHandler {
	return &UserHandler{users: users, avatars: avatars, logger: logger}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,max=72,excludes=password"`
	Name     string `json:"name" validate:"required"`
	Age      int    `json:"age" validate:"min=0"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents a partial profile update.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1"`
	Email    *string `json:"email" validate:"omitnil,email"`
	Password *string `json:"password" validate:"omitnil,min=7,max=72,excludes=password"`
	Age      *int    `json:"age" validate:"omitnil,min=0"`
}

// AuthPayload is returned by signup and login.
type AuthPayload struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} Envelope{data=AuthPayload}
// @Failure 400 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, apperrors.NewValidationError("invalid request body"))
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, apperrors.NewValidationError(err.Error()))
	}

	user, token, err := h.users.Register(c.Request().Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Age:      req.Age,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusCreated, "User created!", AuthPayload{User: user, Token: token})
}

// Login godoc
// @Summary Login user
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Envelope{data=AuthPayload}
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, apperrors.ErrInvalidCredentials)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, apperrors.ErrInvalidCredentials)
	}

	user, token, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, "", AuthPayload{User: user, Token: token})
}

// Logout godoc
// @Summary End the current session
// @Tags users
// @Security BearerAuth
// @Success 200
// @Failure 401
// @Failure 500
// @Router /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}
	if err := h.users.Logout(c.Request().Context(), user, auth.CurrentToken(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusOK)
}

// LogoutAll godoc
// @Summary End every session of the current user
// @Tags users
// @Security BearerAuth
// @Success 200
// @Failure 401
// @Failure 500
// @Router /users/logoutAll [post]
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}
	if err := h.users.LogoutAll(c.Request().Context(), user); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusOK)
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=model.User}
// @Failure 401
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}
	return respond(c, http.StatusOK, "", user)
}

// UpdateMe godoc
// @Summary Update the current user profile
// @Description Only name, email, password and age may be sent; any other key rejects the whole update.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}

	var req UpdateUserRequest
	if err := decodePatch(c, allowedUserUpdates, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, apperrors.NewValidationError(err.Error()))
	}

	updated, err := h.users.Update(c.Request().Context(), user, service.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respond(c, http.StatusOK, "User updated", updated)
}

// DeleteMe godoc
// @Summary Delete the current user, its sessions and tasks
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=model.User}
// @Failure 401
// @Failure 500
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}
	if err := h.users.Delete(c.Request().Context(), user); err != nil {
		return respondError(c, h.logger, err)
	}
	return respond(c, http.StatusOK, "User deleted!", user)
}

// UploadAvatar godoc
// @Summary Upload the current user's avatar
// @Description JPEG or PNG up to 1MB; stored as a 250x250 PNG.
// @Tags users
// @Accept multipart/form-data
// @Security BearerAuth
// @Param avatar formData file true "Image file (.jpg, .jpeg, .png)"
// @Success 200
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401
// @Router /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return respondError(c, h.logger, apperrors.NewMediaTypeError("Please upload an image"))
	}
	if err := avatar.CheckUpload(file.Filename, file.Size); err != nil {
		return respondError(c, h.logger, err)
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, avatar.MaxUploadBytes+1))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.avatars.Upload(c.Request().Context(), user.ID, data); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusOK)
}

// GetAvatar godoc
// @Summary Public avatar of a user
// @Tags users
// @Produce png
// @Param id path string true "User ID"
// @Success 200 {file} binary
// @Failure 404
// @Router /users/{id}/avatar [get]
func (h *UserHandler) GetAvatar(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, apperrors.ErrNotFound)
	}

	data, err := h.avatars.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// DeleteAvatar godoc
// @Summary Remove the current user's avatar
// @Tags users
// @Security BearerAuth
// @Success 200
// @Failure 401
// @Failure 500
// @Router /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return respondError(c, h.logger, apperrors.ErrUnauthenticated)
	}
	if err := h.avatars.Delete(c.Request().Context(), user.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusOK)
}
