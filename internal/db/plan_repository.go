package db

import (
	"time"

	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

type PlanRepository struct {
	database *gorm.DB
}

func NewPlanRepository(database *gorm.DB) *PlanRepository {
	return &PlanRepository{database: database}
}

// PlanSummary is the list-view projection: the six stage payloads are
// deliberately left out.
type PlanSummary struct {
	ID               uint               `json:"id"`
	ProfessionalType string             `json:"professional_type"`
	PatientData      models.PatientData `gorm:"serializer:json" json:"patient_data"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (repo *PlanRepository) Create(plan *models.PatientPlan) error {
	return repo.database.Create(plan).Error
}

func (repo *PlanRepository) FindByID(planID uint) (models.PatientPlan, error) {
	var plan models.PatientPlan
	if err := repo.database.First(&plan, planID).Error; err != nil {
		return models.PatientPlan{}, err
	}
	return plan, nil
}

func (repo *PlanRepository) Save(plan *models.PatientPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	return repo.database.Save(plan).Error
}

func (repo *PlanRepository) ListSummariesByUser(userID uint) ([]PlanSummary, error) {
	summaries := make([]PlanSummary, 0)
	err := repo.database.Model(&models.PatientPlan{}).
		Select("id", "professional_type", "patient_data", "created_at", "updated_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (repo *PlanRepository) Count() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.PatientPlan{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *PlanRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.PatientPlan{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *PlanRepository) CountByCompany(companyID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.PatientPlan{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
