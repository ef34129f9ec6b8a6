package handler

import (
	"log/slog"
	"net/http"

	"bazaar/internal/delivery/api/middleware"
	"bazaar/internal/delivery/api/response"
	"bazaar/internal/domain/entity"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// VerificationHandlerParams holds dependencies for VerificationHandler, injected by Fx.
type VerificationHandlerParams struct {
	fx.In

	VerificationUC usecase.VerificationUsecase
	Logger         *slog.Logger
}

// VerificationHandler serves the provider verification workflow
type VerificationHandler struct {
	verificationUC usecase.VerificationUsecase
	logger         *slog.Logger
}

// NewVerificationHandler is the constructor for VerificationHandler
func NewVerificationHandler(params VerificationHandlerParams) *VerificationHandler {
	return &VerificationHandler{
		verificationUC: params.VerificationUC,
		logger:         params.Logger,
	}
}

// EvidenceRequest describes one submitted evidence artifact
type EvidenceRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Kind string `json:"kind" validate:"required,oneof=portfolio certificate student_id"`
}

// SubmitVerificationRequest represents the request body for a submission
type SubmitVerificationRequest struct {
	Evidence []EvidenceRequest `json:"evidence" validate:"required,min=1,dive"`
}

// ReviewVerificationRequest represents an administrator's decision
type ReviewVerificationRequest struct {
	RequestID  string  `json:"requestId" validate:"required,uuid"`
	Status     string  `json:"status" validate:"required,oneof=approved rejected"`
	AdminNotes *string `json:"adminNotes" validate:"omitempty,max=2000"`
}

// Submit opens a verification request for the calling artisan
func (h *VerificationHandler) Submit(c echo.Context) error {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthenticated(c)
	}

	var req SubmitVerificationRequest
	if err := c.Bind(&req); err != nil {
		return response.InvalidInput(c, "verification")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	evidence := make([]entity.EvidenceArtifact, 0, len(req.Evidence))
	for _, artifact := range req.Evidence {
		evidence = append(evidence, entity.EvidenceArtifact{
			URL:  artifact.URL,
			Kind: entity.EvidenceKind(artifact.Kind),
		})
	}

	request, err := h.verificationUC.Submit(c.Request().Context(), &usecase.SubmitVerificationInput{
		ProviderID: caller.ID,
		Evidence:   evidence,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, toVerificationResponse(request))
}

// List returns verification requests, optionally filtered by ?status=
func (h *VerificationHandler) List(c echo.Context) error {
	var status *entity.VerificationStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := entity.VerificationStatus(raw)
		status = &s
	}

	requests, err := h.verificationUC.List(c.Request().Context(), status)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toVerificationResponses(requests))
}

// Get returns a single verification request
func (h *VerificationHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.InvalidID(c, "verification request")
	}

	request, err := h.verificationUC.Get(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toVerificationResponse(request))
}

// Review applies the calling administrator's decision
func (h *VerificationHandler) Review(c echo.Context) error {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthenticated(c)
	}

	var req ReviewVerificationRequest
	if err := c.Bind(&req); err != nil {
		return response.InvalidInput(c, "review")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return response.InvalidID(c, "verification request")
	}

	request, err := h.verificationUC.Review(c.Request().Context(), &usecase.ReviewInput{
		RequestID: requestID,
		Decision:  entity.VerificationStatus(req.Status),
		Notes:     req.AdminNotes,
		Reviewer:  caller,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toVerificationResponse(request))
}

// ProviderStatus returns the public verification state of a provider
func (h *VerificationHandler) ProviderStatus(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.InvalidID(c, "provider")
	}

	status, err := h.verificationUC.ProviderStatus(c.Request().Context(), providerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &ProviderStatusResponse{
		ProviderID:         status.ProviderID,
		BusinessName:       status.BusinessName,
		Verified:           status.Verified,
		VerificationStatus: status.VerificationStatus.String(),
	})
}

// Badge returns the verification QR badge of a verified provider as PNG
func (h *VerificationHandler) Badge(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.InvalidID(c, "provider")
	}

	png, err := h.verificationUC.VerificationBadge(c.Request().Context(), providerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.PNG(c, png)
}
