package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

func (handler *Handler) ListPrompts(c *fiber.Ctx) error {
	handler.ensureDependencies()
	prompts, err := handler.repositories.Prompts.List()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list prompts")
	}
	return c.JSON(fiber.Map{"prompts": prompts})
}

func (handler *Handler) GetPrompt(c *fiber.Ctx) error {
	prompt, err := handler.promptForRequest(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"prompt": prompt})
}

// UpdatePrompt edits a seeded template in place. There is no create or
// delete: one template per wizard step, always present.
func (handler *Handler) UpdatePrompt(c *fiber.Ctx) error {
	prompt, err := handler.promptForRequest(c)
	if err != nil {
		return err
	}

	editor, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	input := struct {
		Content     string   `json:"content"`
		Temperature *float64 `json:"temperature"`
		MaxTokens   *int     `json:"max_tokens"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return apiError(c, fiber.StatusBadRequest, "prompt content is required")
	}

	updates := map[string]any{
		"content":    content,
		"updated_by": editor.ID,
		"updated_at": time.Now().UTC(),
	}
	if input.Temperature != nil {
		if *input.Temperature < 0 || *input.Temperature > 2 {
			return apiError(c, fiber.StatusBadRequest, "temperature must be between 0 and 2")
		}
		updates["temperature"] = *input.Temperature
	}
	if input.MaxTokens != nil {
		if *input.MaxTokens <= 0 {
			return apiError(c, fiber.StatusBadRequest, "max_tokens must be positive")
		}
		updates["max_tokens"] = *input.MaxTokens
	}

	if err := handler.repositories.Prompts.UpdateByID(prompt.ID, updates); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to update prompt")
	}

	updated, err := handler.repositories.Prompts.FindByID(prompt.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load prompt")
	}
	return c.JSON(fiber.Map{"prompt": updated})
}

func (handler *Handler) promptForRequest(c *fiber.Ctx) (models.Prompt, error) {
	promptID, err := paramUint(c, "id")
	if err != nil {
		return models.Prompt{}, apiError(c, fiber.StatusBadRequest, "invalid prompt id")
	}

	handler.ensureDependencies()
	prompt, err := handler.repositories.Prompts.FindByID(promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Prompt{}, apiError(c, fiber.StatusNotFound, "prompt not found")
		}
		return models.Prompt{}, apiError(c, fiber.StatusInternalServerError, "failed to load prompt")
	}
	return prompt, nil
}
