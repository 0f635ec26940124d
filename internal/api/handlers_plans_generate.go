package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/services"
)

// GeneratePlan runs the final-plan completion and persists the assembled
// document. Unlike the stage analyses this call fails hard: without a
// generated plan there is nothing to degrade to.
func (handler *Handler) GeneratePlan(c *fiber.Ctx) error {
	plan, user, err := handler.planForRequest(c)
	if err != nil {
		return err
	}

	if plan.Questionnaire == nil {
		return apiError(c, fiber.StatusBadRequest, services.ErrPlanMissingStageData.Error())
	}

	stepKey := services.FinalPlanStepKey(plan.ProfessionalType)
	generation := handler.generationService.Generate(c.Context(), user.ID, plan.CompanyID, stepKey, handler.stageContext(plan))
	if !generation.OK {
		if generation.Message == services.ErrTokenBudgetExceeded.Error() {
			return apiError(c, fiber.StatusPaymentRequired, generation.Message)
		}
		return apiError(c, fiber.StatusInternalServerError, generation.Message)
	}

	finalPlan := services.AssembleFinalPlan(plan, generation.Content)
	plan.FinalPlan = &finalPlan
	if err := handler.planService.Save(&plan); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save generated plan")
	}

	return c.JSON(fiber.Map{
		"final_plan":  finalPlan,
		"tokens_used": generation.TokensUsed,
	})
}
