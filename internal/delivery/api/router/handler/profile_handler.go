package handler

import (
	"log/slog"
	"net/http"

	"bazaar/internal/delivery/api/middleware"
	"bazaar/internal/delivery/api/response"
	"bazaar/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// ProfileHandlerParams holds dependencies for ProfileHandler, injected by Fx.
type ProfileHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	Logger    *slog.Logger
}

// ProfileHandler serves the caller's own profile
type ProfileHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler
func NewProfileHandler(params ProfileHandlerParams) *ProfileHandler {
	return &ProfileHandler{
		profileUC: params.ProfileUC,
		logger:    params.Logger,
	}
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	FullName       *string `json:"fullName" validate:"omitempty,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Department     *string `json:"department" validate:"omitempty,max=100"`
	Level          *string `json:"level" validate:"omitempty,max=32"`
	BusinessName   *string `json:"businessName" validate:"omitempty,max=100"`
	Location       *string `json:"location" validate:"omitempty,max=255"`
	Specialization *string `json:"specialization" validate:"omitempty,max=100"`
	Experience     *string `json:"experience" validate:"omitempty,max=255"`
}

// GetMe returns the stored profile of the caller
func (h *ProfileHandler) GetMe(c echo.Context) error {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthenticated(c)
	}

	identity, err := h.profileUC.GetProfile(c.Request().Context(), caller.ID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toIdentityResponse(identity))
}

// UpdateMe applies a partial update to the caller's profile
func (h *ProfileHandler) UpdateMe(c echo.Context) error {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthenticated(c)
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.InvalidInput(c, "profile")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	identity, err := h.profileUC.UpdateProfile(c.Request().Context(), caller.ID, &usecase.UpdateProfileInput{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Department:     req.Department,
		Level:          req.Level,
		BusinessName:   req.BusinessName,
		Location:       req.Location,
		Specialization: req.Specialization,
		Experience:     req.Experience,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toIdentityResponse(identity))
}
