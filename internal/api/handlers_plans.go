package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
	"github.com/lyz-health/lyz/internal/services"
)

func (handler *Handler) StartPlan(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := struct {
		ProfessionalType string             `json:"professional_type"`
		PatientData      models.PatientData `json:"patient_data"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	handler.ensureDependencies()
	plan, err := handler.planService.Start(user, input.ProfessionalType, input.PatientData)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfessionalType):
			return apiError(c, fiber.StatusBadRequest, "professional_type must be medical_nutritionist or other_professional")
		case errors.Is(err, models.ErrPatientDataInvalid):
			return apiError(c, fiber.StatusBadRequest, "patient name is required")
		default:
			return apiError(c, fiber.StatusInternalServerError, "failed to create plan")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"plan": plan})
}

func (handler *Handler) ListPlans(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	handler.ensureDependencies()
	summaries, err := handler.planService.ListForUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list plans")
	}
	return c.JSON(fiber.Map{"plans": summaries})
}

func (handler *Handler) GetPlan(c *fiber.Ctx) error {
	plan, _, err := handler.planForRequest(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"plan": plan})
}

// planForRequest resolves the :id parameter and enforces plan ownership. On
// failure the response has already been written.
func (handler *Handler) planForRequest(c *fiber.Ctx) (models.PatientPlan, *models.User, error) {
	user, ok := currentUser(c)
	if !ok {
		return models.PatientPlan{}, nil, apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	planID, err := paramUint(c, "id")
	if err != nil {
		return models.PatientPlan{}, nil, apiError(c, fiber.StatusBadRequest, "invalid plan id")
	}

	handler.ensureDependencies()
	plan, err := handler.planService.LoadForViewer(planID, user)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlanNotFound):
			return models.PatientPlan{}, nil, apiError(c, fiber.StatusNotFound, "plan not found")
		case errors.Is(err, services.ErrPlanAccessDenied):
			return models.PatientPlan{}, nil, apiError(c, fiber.StatusForbidden, "not authorized for this plan")
		default:
			return models.PatientPlan{}, nil, apiError(c, fiber.StatusInternalServerError, "failed to load plan")
		}
	}
	return plan, user, nil
}
