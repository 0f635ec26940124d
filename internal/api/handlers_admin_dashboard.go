package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/db"
)

const dashboardUsageWindowDays = 30

// AdminDashboard aggregates the numbers the back office opens on: global
// totals, a daily usage series, and the per-company ranking.
func (handler *Handler) AdminDashboard(c *fiber.Ctx) error {
	handler.ensureDependencies()

	totalTokens, err := handler.repositories.TokenUsages.SumTokens(db.UsageFilter{})
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	totalCost, err := handler.repositories.TokenUsages.SumCost(db.UsageFilter{})
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	userCount, err := handler.repositories.Users.Count()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	companyCount, err := handler.repositories.Companies.Count()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	planCount, err := handler.repositories.Plans.Count()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	since := time.Now().UTC().AddDate(0, 0, -dashboardUsageWindowDays)
	dailyUsage, err := handler.repositories.TokenUsages.DailyTotalsSince(since)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}
	companyUsage, err := handler.repositories.TokenUsages.TotalsByCompany()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return c.JSON(fiber.Map{
		"totals": fiber.Map{
			"tokens":    totalTokens,
			"cost":      totalCost,
			"users":     userCount,
			"companies": companyCount,
			"plans":     planCount,
		},
		"daily_usage":   dailyUsage,
		"company_usage": companyUsage,
	})
}
