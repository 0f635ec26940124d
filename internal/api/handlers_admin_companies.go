package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

type companyInput struct {
	Name       string `json:"name"`
	TokenLimit *int64 `json:"token_limit"`
}

func (handler *Handler) ListCompanies(c *fiber.Ctx) error {
	handler.ensureDependencies()
	companies, err := handler.repositories.Companies.List()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list companies")
	}
	return c.JSON(fiber.Map{"companies": companies})
}

func (handler *Handler) CreateCompany(c *fiber.Ctx) error {
	input := companyInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apiError(c, fiber.StatusBadRequest, "company name is required")
	}

	company := models.Company{
		Name:       name,
		TokenLimit: models.DefaultCompanyTokenLimit,
		CreatedAt:  time.Now().UTC(),
	}
	if input.TokenLimit != nil {
		if *input.TokenLimit <= 0 {
			return apiError(c, fiber.StatusBadRequest, "token_limit must be positive")
		}
		company.TokenLimit = *input.TokenLimit
	}

	handler.ensureDependencies()
	if err := handler.repositories.Companies.Create(&company); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create company")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"company": company})
}

func (handler *Handler) GetCompany(c *fiber.Ctx) error {
	company, err := handler.companyForRequest(c)
	if err != nil {
		return err
	}

	userCount, err := handler.repositories.Users.CountByCompany(company.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load company")
	}
	planCount, err := handler.repositories.Plans.CountByCompany(company.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load company")
	}
	tokensUsed, err := handler.repositories.TokenUsages.SumTokensByCompany(company.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load company")
	}

	return c.JSON(fiber.Map{
		"company": company,
		"stats": fiber.Map{
			"users":            userCount,
			"plans":            planCount,
			"tokens_used":      tokensUsed,
			"tokens_remaining": company.TokenLimit - tokensUsed,
		},
	})
}

func (handler *Handler) UpdateCompany(c *fiber.Ctx) error {
	company, err := handler.companyForRequest(c)
	if err != nil {
		return err
	}

	input := companyInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if input.TokenLimit != nil {
		if *input.TokenLimit <= 0 {
			return apiError(c, fiber.StatusBadRequest, "token_limit must be positive")
		}
		updates["token_limit"] = *input.TokenLimit
	}
	if len(updates) == 0 {
		return apiError(c, fiber.StatusBadRequest, "nothing to update")
	}

	if err := handler.repositories.Companies.UpdateByID(company.ID, updates); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to update company")
	}

	updated, err := handler.repositories.Companies.FindByID(company.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load company")
	}
	return c.JSON(fiber.Map{"company": updated})
}

// DeleteCompany refuses while accounts still point at the company; usage
// ledger rows are kept for billing history.
func (handler *Handler) DeleteCompany(c *fiber.Ctx) error {
	company, err := handler.companyForRequest(c)
	if err != nil {
		return err
	}

	userCount, err := handler.repositories.Users.CountByCompany(company.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to delete company")
	}
	if userCount > 0 {
		return apiError(c, fiber.StatusBadRequest, "company still has users")
	}

	if err := handler.repositories.Companies.Delete(company.ID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to delete company")
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (handler *Handler) companyForRequest(c *fiber.Ctx) (models.Company, error) {
	companyID, err := paramUint(c, "id")
	if err != nil {
		return models.Company{}, apiError(c, fiber.StatusBadRequest, "invalid company id")
	}

	handler.ensureDependencies()
	company, err := handler.repositories.Companies.FindByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Company{}, apiError(c, fiber.StatusNotFound, "company not found")
		}
		return models.Company{}, apiError(c, fiber.StatusInternalServerError, "failed to load company")
	}
	return company, nil
}
