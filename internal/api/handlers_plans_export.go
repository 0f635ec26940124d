package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/services"
)

func (handler *Handler) ExportPlan(c *fiber.Ctx) error {
	plan, _, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	result, err := handler.exportService.Export(c.Context(), plan, c.Query("format"))
	if err != nil {
		if errors.Is(err, services.ErrPlanNotGenerated) {
			return apiError(c, fiber.StatusBadRequest, "plan has not been generated yet")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to export plan")
	}

	return c.JSON(fiber.Map{
		"download_url": result.DownloadURL,
		"file_name":    result.FileName,
	})
}
