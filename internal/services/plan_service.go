package services

import (
	"errors"
	"strings"
	"time"

	"github.com/lyz-health/lyz/internal/db"
	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanAccessDenied     = errors.New("not authorized for this plan")
	ErrProfessionalType     = errors.New("unknown professional type")
	ErrPlanMissingStageData = errors.New("questionnaire data is required to generate plan")
)

type PlanRepository interface {
	Create(plan *models.PatientPlan) error
	FindByID(planID uint) (models.PatientPlan, error)
	Save(plan *models.PatientPlan) error
	ListSummariesByUser(userID uint) ([]db.PlanSummary, error)
}

type PlanService struct {
	plans PlanRepository
}

func NewPlanService(plans PlanRepository) *PlanService {
	return &PlanService{plans: plans}
}

func (service *PlanService) Start(owner *models.User, professionalType string, patientData models.PatientData) (models.PatientPlan, error) {
	normalizedType := strings.TrimSpace(professionalType)
	switch normalizedType {
	case models.ProfessionalMedicalNutritionist, models.ProfessionalOther:
	default:
		return models.PatientPlan{}, ErrProfessionalType
	}
	if err := patientData.Validate(); err != nil {
		return models.PatientPlan{}, err
	}

	now := time.Now().UTC()
	plan := models.PatientPlan{
		UserID:           owner.ID,
		CompanyID:        owner.CompanyID,
		ProfessionalType: normalizedType,
		PatientData:      patientData,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := service.plans.Create(&plan); err != nil {
		return models.PatientPlan{}, err
	}
	return plan, nil
}

// LoadForViewer fetches a plan and enforces the access rule: the creating
// user or any superadmin.
func (service *PlanService) LoadForViewer(planID uint, viewer *models.User) (models.PatientPlan, error) {
	plan, err := service.plans.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PatientPlan{}, ErrPlanNotFound
		}
		return models.PatientPlan{}, err
	}

	if plan.UserID != viewer.ID && !viewer.IsSuperadmin() {
		return models.PatientPlan{}, ErrPlanAccessDenied
	}
	return plan, nil
}

func (service *PlanService) Save(plan *models.PatientPlan) error {
	return service.plans.Save(plan)
}

func (service *PlanService) ListForUser(userID uint) ([]db.PlanSummary, error) {
	return service.plans.ListSummariesByUser(userID)
}

// FinalPlanStepKey picks the generation template by professional type.
func FinalPlanStepKey(professionalType string) string {
	if professionalType == models.ProfessionalMedicalNutritionist {
		return models.StepPlanMedicalNutritionist
	}
	return models.StepPlanOtherProfessional
}
