package progress

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/identity"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	service *ProgressService
	// allowBodyUser lets the evaluation body pick the user. Only set when
	// tokens are not verified.
	allowBodyUser bool
}

func NewProgressHandler(service *ProgressService, allowBodyUser bool) *ProgressHandler {
	return &ProgressHandler{service: service, allowBodyUser: allowBodyUser}
}

// GetProgress handles GET /progress.
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	up, err := h.service.GetProgress(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "User not found"})
		}
		return serverError(c, err, userID, "get_progress")
	}

	return c.JSON(up)
}

// RecordEvaluation handles POST /progress/update-after-evaluation.
func (h *ProgressHandler) RecordEvaluation(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req EvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if h.allowBodyUser && req.UserID != "" {
		userID = req.UserID
	}

	result, err := h.service.RecordEvaluation(c.UserContext(), userID, req.Phase, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Please provide both phase and score"})
		case errors.Is(err, ErrInvalidPhase):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Valid phase is required"})
		case errors.Is(err, ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "User not found"})
		}
		return serverError(c, err, userID, "record_evaluation")
	}

	return c.JSON(result)
}

// UpdateProgress handles the retired POST /progress.
func (h *ProgressHandler) UpdateProgress(c *fiber.Ctx) error {
	err := h.service.UpdateProgress()
	slog.Warn("deprecated endpoint called", "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{Error: "This endpoint is deprecated; use /api/evaluate"})
}

// ChangePhase handles POST /progress/phase.
func (h *ProgressHandler) ChangePhase(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req PhaseChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Valid phase is required"})
	}

	up, err := h.service.ChangePhase(c.UserContext(), userID, req.Phase)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhase):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Valid phase is required"})
		case errors.Is(err, ErrPhaseLocked):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "Phase is locked"})
		case errors.Is(err, ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "User not found"})
		}
		return serverError(c, err, userID, "change_phase")
	}

	return c.JSON(PhaseChangeResponse{
		CurrentPhase:  up.CurrentPhase,
		PhaseProgress: up.PhaseProgress,
	})
}

// CompleteOnboarding handles POST /progress/onboarding-complete.
func (h *ProgressHandler) CompleteOnboarding(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	up, err := h.service.CompleteOnboarding(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "User not found"})
		}
		return serverError(c, err, userID, "complete_onboarding")
	}

	return c.JSON(OnboardingResponse{OnboardingCompleted: up.OnboardingCompleted})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
}

// serverError logs the cause and reports it to Sentry; the client only sees a generic message.
func serverError(c *fiber.Ctx, err error, userID, action string) error {
	slog.Error("progress request failed",
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"user_id", userID,
		"action", action,
		"error", err.Error(),
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Server error"})
}
