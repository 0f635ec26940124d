package services

import (
	"errors"
	"testing"

	"github.com/lyz-health/lyz/internal/db"
	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

type fakePlanRepo struct {
	plans  map[uint]models.PatientPlan
	nextID uint
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uint]models.PatientPlan), nextID: 1}
}

func (repo *fakePlanRepo) Create(plan *models.PatientPlan) error {
	plan.ID = repo.nextID
	repo.nextID++
	repo.plans[plan.ID] = *plan
	return nil
}

func (repo *fakePlanRepo) FindByID(planID uint) (models.PatientPlan, error) {
	plan, exists := repo.plans[planID]
	if !exists {
		return models.PatientPlan{}, gorm.ErrRecordNotFound
	}
	return plan, nil
}

func (repo *fakePlanRepo) Save(plan *models.PatientPlan) error {
	repo.plans[plan.ID] = *plan
	return nil
}

func (repo *fakePlanRepo) ListSummariesByUser(userID uint) ([]db.PlanSummary, error) {
	var summaries []db.PlanSummary
	for _, plan := range repo.plans {
		if plan.UserID == userID {
			summaries = append(summaries, db.PlanSummary{ID: plan.ID})
		}
	}
	return summaries, nil
}

func TestStartRejectsUnknownProfessionalType(t *testing.T) {
	t.Parallel()

	service := NewPlanService(newFakePlanRepo())
	owner := &models.User{ID: 1, CompanyID: 2}

	_, err := service.Start(owner, "astrologer", models.PatientData{Name: "Maria"})
	if !errors.Is(err, ErrProfessionalType) {
		t.Fatalf("err = %v, want ErrProfessionalType", err)
	}
}

func TestStartRejectsInvalidPatientData(t *testing.T) {
	t.Parallel()

	service := NewPlanService(newFakePlanRepo())
	owner := &models.User{ID: 1, CompanyID: 2}

	_, err := service.Start(owner, models.ProfessionalOther, models.PatientData{Name: "  "})
	if !errors.Is(err, models.ErrPatientDataInvalid) {
		t.Fatalf("err = %v, want ErrPatientDataInvalid", err)
	}
}

func TestStartStampsOwnershipAndCompany(t *testing.T) {
	t.Parallel()

	repo := newFakePlanRepo()
	service := NewPlanService(repo)
	owner := &models.User{ID: 9, CompanyID: 4}

	plan, err := service.Start(owner, " medical_nutritionist ", models.PatientData{Name: "Maria", Age: 41})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if plan.UserID != 9 || plan.CompanyID != 4 {
		t.Fatalf("plan ownership = %d/%d", plan.UserID, plan.CompanyID)
	}
	if plan.ProfessionalType != models.ProfessionalMedicalNutritionist {
		t.Fatalf("professional type = %q", plan.ProfessionalType)
	}
	if plan.CreatedAt.IsZero() || plan.UpdatedAt.IsZero() {
		t.Fatal("timestamps must be stamped")
	}
	if _, err := repo.FindByID(plan.ID); err != nil {
		t.Fatalf("plan not persisted: %v", err)
	}
}

func TestLoadForViewerAccessRules(t *testing.T) {
	t.Parallel()

	repo := newFakePlanRepo()
	service := NewPlanService(repo)
	owner := &models.User{ID: 1, CompanyID: 1, Role: models.RoleUser}
	plan, err := service.Start(owner, models.ProfessionalOther, models.PatientData{Name: "Maria"})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	if _, err := service.LoadForViewer(plan.ID, owner); err != nil {
		t.Fatalf("owner access: %v", err)
	}

	admin := &models.User{ID: 2, Role: models.RoleSuperadmin}
	if _, err := service.LoadForViewer(plan.ID, admin); err != nil {
		t.Fatalf("superadmin access: %v", err)
	}

	intruder := &models.User{ID: 3, Role: models.RoleUser}
	if _, err := service.LoadForViewer(plan.ID, intruder); !errors.Is(err, ErrPlanAccessDenied) {
		t.Fatalf("intruder err = %v, want ErrPlanAccessDenied", err)
	}

	if _, err := service.LoadForViewer(999, owner); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("missing plan err = %v, want ErrPlanNotFound", err)
	}
}

func TestFinalPlanStepKeyByProfessionalType(t *testing.T) {
	t.Parallel()

	if got := FinalPlanStepKey(models.ProfessionalMedicalNutritionist); got != models.StepPlanMedicalNutritionist {
		t.Fatalf("medical step = %q", got)
	}
	if got := FinalPlanStepKey(models.ProfessionalOther); got != models.StepPlanOtherProfessional {
		t.Fatalf("other step = %q", got)
	}
}
