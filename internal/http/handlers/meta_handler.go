package handlers

import (
	"github.com/ads-marketplace/tactics/internal/http/dto"
	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var tacticStatuses = []MetaOption{
	{ID: string(models.TacticStatusDraft), Label: "Draft"},
	{ID: string(models.TacticStatusPendingApproval), Label: "Pending approval"},
	{ID: string(models.TacticStatusActive), Label: "Active"},
	{ID: string(models.TacticStatusPaused), Label: "Paused"},
	{ID: string(models.TacticStatusCompleted), Label: "Completed"},
	{ID: string(models.TacticStatusFailed), Label: "Failed"},
	{ID: string(models.TacticStatusInactive), Label: "Inactive"},
}

var pacingOptions = []MetaOption{
	{ID: models.PacingEven, Label: "Even"},
	{ID: models.PacingASAP, Label: "As soon as possible"},
	{ID: models.PacingFrontLoaded, Label: "Front loaded"},
}

func (h *MetaHandler) GetStatuses(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: tacticStatuses})
}

func (h *MetaHandler) GetPacing(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: pacingOptions})
}
