package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
	"github.com/lyz-health/lyz/internal/services"
)

func generateReadyPlan(t *testing.T, env *testEnv, token string, patient models.PatientData) uint {
	t.Helper()

	planID := env.startPlan(t, token, models.ProfessionalMedicalNutritionist, patient)
	response := env.request(t, http.MethodPost, planPath(planID, "/questionnaire"), token, fiber.Map{
		"answers": map[string]any{"sleep_hours": 7},
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("questionnaire status = %d, want %d", response.StatusCode, http.StatusOK)
	}
	return planID
}

func TestGenerateRequiresQuestionnaire(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := env.startPlan(t, token, models.ProfessionalMedicalNutritionist, models.PatientData{Name: "Paciente"})
	response := env.request(t, http.MethodPost, planPath(planID, "/generate"), token, nil)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("generate status = %d, want %d", response.StatusCode, http.StatusBadRequest)
	}
	body := decodeBody(t, response)
	if body["error"] != services.ErrPlanMissingStageData.Error() {
		t.Fatalf("error = %v, want %q", body["error"], services.ErrPlanMissingStageData.Error())
	}
}

func TestGeneratePersistsFinalPlan(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := generateReadyPlan(t, env, token, models.PatientData{Name: "Paciente", Age: 38})
	response := env.request(t, http.MethodPost, planPath(planID, "/generate"), token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d, want %d", response.StatusCode, http.StatusOK)
	}

	var stored models.PatientPlan
	if err := env.database.First(&stored, planID).Error; err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if stored.FinalPlan == nil {
		t.Fatal("expected final plan to be persisted")
	}
	if stored.FinalPlan.AIGeneratedContent == "" {
		t.Fatal("expected generated content in final plan")
	}
	if stored.FinalPlan.CyclicalPlan.Menopausal != "" {
		t.Fatal("menopausal section must be absent for non-menopausal patient")
	}
}

func TestGenerateIncludesMenopausalSectionWhenFlagged(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := generateReadyPlan(t, env, token, models.PatientData{Name: "Paciente", Age: 52, IsMenopausal: true})
	response := env.request(t, http.MethodPost, planPath(planID, "/generate"), token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d, want %d", response.StatusCode, http.StatusOK)
	}

	var stored models.PatientPlan
	if err := env.database.First(&stored, planID).Error; err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if stored.FinalPlan == nil || stored.FinalPlan.CyclicalPlan.Menopausal == "" {
		t.Fatal("expected menopausal section for flagged patient")
	}
}

func TestGenerateFailsHardOnAIOutage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := generateReadyPlan(t, env, token, models.PatientData{Name: "Paciente"})

	env.completer.err = errAITestOutage
	response := env.request(t, http.MethodPost, planPath(planID, "/generate"), token, nil)
	if response.StatusCode != http.StatusInternalServerError {
		t.Fatalf("generate status = %d, want %d", response.StatusCode, http.StatusInternalServerError)
	}

	var stored models.PatientPlan
	if err := env.database.First(&stored, planID).Error; err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if stored.FinalPlan != nil {
		t.Fatal("failed generation must not persist a final plan")
	}
}

func TestGenerateRefusedAtExhaustedBudget(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	capped := env.createCompany(t, "Capped Clinic", 100)
	user := env.createUser(t, "capped@example.com", models.RoleUser, capped.ID)
	token := env.tokenFor(t, user)

	planID := env.startPlan(t, token, models.ProfessionalMedicalNutritionist, models.PatientData{Name: "Paciente"})

	usage := models.TokenUsage{UserID: user.ID, CompanyID: capped.ID, PromptID: 1, TokensUsed: 100, Cost: 0.0002}
	if err := env.database.Create(&usage).Error; err != nil {
		t.Fatalf("insert usage: %v", err)
	}

	questionnaire := env.request(t, http.MethodPost, planPath(planID, "/questionnaire"), token, fiber.Map{
		"answers": map[string]any{"sleep_hours": 7},
	})
	if questionnaire.StatusCode != http.StatusOK {
		t.Fatalf("questionnaire status = %d, want %d", questionnaire.StatusCode, http.StatusOK)
	}

	callsBefore := env.completer.callCount()
	response := env.request(t, http.MethodPost, planPath(planID, "/generate"), token, nil)
	if response.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("generate status = %d, want %d", response.StatusCode, http.StatusPaymentRequired)
	}
	if env.completer.callCount() != callsBefore {
		t.Fatal("exhausted budget must not reach the completion API")
	}

	var rows int64
	if err := env.database.Model(&models.TokenUsage{}).
		Where("company_id = ?", capped.ID).
		Count(&rows).Error; err != nil {
		t.Fatalf("count usage rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("usage rows = %d, want 1 (no row for the refused call)", rows)
	}
}
