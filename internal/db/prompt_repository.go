package db

import (
	"errors"
	"time"

	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

type PromptRepository struct {
	database *gorm.DB
}

func NewPromptRepository(database *gorm.DB) *PromptRepository {
	return &PromptRepository{database: database}
}

func (repo *PromptRepository) FindByID(promptID uint) (models.Prompt, error) {
	var prompt models.Prompt
	if err := repo.database.First(&prompt, promptID).Error; err != nil {
		return models.Prompt{}, err
	}
	return prompt, nil
}

func (repo *PromptRepository) FindByStepKey(stepKey string) (models.Prompt, error) {
	var prompt models.Prompt
	if err := repo.database.Where("step_key = ?", stepKey).First(&prompt).Error; err != nil {
		return models.Prompt{}, err
	}
	return prompt, nil
}

func (repo *PromptRepository) List() ([]models.Prompt, error) {
	prompts := make([]models.Prompt, 0)
	if err := repo.database.Order("step_key ASC").Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

func (repo *PromptRepository) UpdateByID(promptID uint, updates map[string]any) error {
	return repo.database.Model(&models.Prompt{}).Where("id = ?", promptID).Updates(updates).Error
}

// EnsureByStepKey seeds a prompt template once; existing rows keep any admin
// edits.
func (repo *PromptRepository) EnsureByStepKey(prompt models.Prompt) (models.Prompt, bool, error) {
	var existing models.Prompt
	err := repo.database.Where("step_key = ?", prompt.StepKey).First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Prompt{}, false, err
	}

	if prompt.UpdatedAt.IsZero() {
		prompt.UpdatedAt = time.Now().UTC()
	}
	if err := repo.database.Create(&prompt).Error; err != nil {
		return models.Prompt{}, false, err
	}
	return prompt, true, nil
}
