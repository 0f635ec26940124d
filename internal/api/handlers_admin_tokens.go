package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/db"
)

// TokenUsageReport returns the filtered ledger plus summary sums over the
// same filter. Dates are inclusive calendar days.
func (handler *Handler) TokenUsageReport(c *fiber.Ctx) error {
	filter := db.UsageFilter{}

	if from, ok, err := parseDateQuery(c, "start_date", false); err != nil {
		return apiError(c, fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
	} else if ok {
		filter.From = &from
	}
	if to, ok, err := parseDateQuery(c, "end_date", true); err != nil {
		return apiError(c, fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
	} else if ok {
		filter.To = &to
	}
	if companyID, ok := queryUint(c, "company_id"); ok {
		filter.CompanyID = companyID
	}
	if userID, ok := queryUint(c, "user_id"); ok {
		filter.UserID = userID
	}

	handler.ensureDependencies()
	rows, err := handler.repositories.TokenUsages.ListFiltered(filter)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load usage")
	}
	tokens, err := handler.repositories.TokenUsages.SumTokens(filter)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load usage")
	}
	cost, err := handler.repositories.TokenUsages.SumCost(filter)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load usage")
	}

	return c.JSON(fiber.Map{
		"usage": rows,
		"summary": fiber.Map{
			"tokens": tokens,
			"cost":   cost,
		},
	})
}

func parseDateQuery(c *fiber.Ctx, name string, endOfDay bool) (time.Time, bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, false, nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, false, err
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return day, true, nil
}
