package handlers

import (
	"errors"

	"github.com/ads-marketplace/tactics/internal/http/dto"
	"github.com/ads-marketplace/tactics/internal/middleware"
	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/ads-marketplace/tactics/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TacticHandler struct {
	tacticService *services.TacticService
	log           *zap.Logger
}

func NewTacticHandler(tacticService *services.TacticService, log *zap.Logger) *TacticHandler {
	return &TacticHandler{tacticService: tacticService, log: log}
}

func (h *TacticHandler) CreateTactic(c *fiber.Ctx) error {
	var req dto.CreateTacticRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	in := services.CreateTacticInput{
		CampaignID:     req.CampaignID,
		Name:           req.Name,
		Description:    req.Description,
		MediaProductID: req.MediaProductID,
		CPM:            req.CPM,
		Budget:         budgetFromRequest(req.Budget),
		SignalID:       req.SignalID,
		BrandStoryID:   req.BrandStoryID,
	}

	view, err := h.tacticService.CreateTactic(c.Context(), in, middleware.GetCallerToken(c))
	if err != nil {
		return h.fail(c, err, "create tactic failed")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *TacticHandler) ListTactics(c *fiber.Ctx) error {
	campaignID := c.Query("campaign_id")
	if campaignID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "campaign_id is required"})
	}

	views, err := h.tacticService.ListTactics(c.Context(), campaignID, middleware.GetCallerToken(c))
	if err != nil {
		return h.fail(c, err, "list tactics failed")
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: views})
}

func (h *TacticHandler) GetTactic(c *fiber.Ctx) error {
	view, err := h.tacticService.GetTactic(c.Context(), c.Params("id"), middleware.GetCallerToken(c))
	if err != nil {
		return h.fail(c, err, "get tactic failed")
	}
	if view == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "tactic not found"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: view})
}

func (h *TacticHandler) UpdateTactic(c *fiber.Ctx) error {
	var req dto.UpdateTacticRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	updates := services.TacticUpdates{
		Name:        req.Name,
		Description: req.Description,
		CPM:         req.CPM,
		SignalID:    req.SignalID,
	}
	if req.Budget != nil {
		b := budgetFromRequest(*req.Budget)
		updates.Budget = &b
	}

	id := c.Params("id")
	token := middleware.GetCallerToken(c)
	if err := h.tacticService.UpdateTactic(c.Context(), id, updates, token); err != nil {
		return h.fail(c, err, "update tactic failed")
	}

	updated, _ := h.tacticService.GetTactic(c.Context(), id, token)
	return c.JSON(dto.SuccessResponse{OK: true, Data: updated})
}

func (h *TacticHandler) DeleteTactic(c *fiber.Ctx) error {
	if err := h.tacticService.SoftDeleteTactic(c.Context(), c.Params("id"), middleware.GetCallerToken(c)); err != nil {
		return h.fail(c, err, "delete tactic failed")
	}

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *TacticHandler) GetTacticEvents(c *fiber.Ctx) error {
	trail, err := h.tacticService.GetTacticEvents(c.Context(), c.Params("id"), middleware.GetCallerToken(c))
	if err != nil {
		return h.fail(c, err, "get tactic events failed")
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: trail})
}

// UpdateStatus is mounted on the internal group only.
func (h *TacticHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "status is required"})
	}

	id := c.Params("id")
	if err := h.tacticService.UpdateTacticStatus(c.Context(), id, models.TacticStatus(req.Status)); err != nil {
		return h.fail(c, err, "update tactic status failed")
	}

	h.log.Info("tactic status set", zap.String("tactic_id", id), zap.String("status", req.Status))
	return c.JSON(dto.SuccessResponse{OK: true})
}

// fail maps service errors onto HTTP statuses. Persistence and unknown
// errors are logged and hidden from the caller.
func (h *TacticHandler) fail(c *fiber.Ctx, err error, msg string) error {
	reqID := middleware.GetRequestID(c)

	switch {
	case errors.Is(err, models.ErrAuth):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid or expired token", RequestID: reqID})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "tactic not found", RequestID: reqID})
	case errors.Is(err, models.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
	case errors.Is(err, models.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error(), RequestID: reqID})
	}

	h.log.Error(msg, zap.String("request_id", reqID), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error", RequestID: reqID})
}

func budgetFromRequest(b dto.BudgetRequest) models.BudgetAllocation {
	return models.BudgetAllocation{
		Amount:     b.Amount,
		Currency:   b.Currency,
		DailyCap:   b.DailyCap,
		Pacing:     b.Pacing,
		Percentage: b.Percentage,
	}
}
