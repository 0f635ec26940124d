package api

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
)

func TestStartPlanRejectsUnknownProfessionalType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	response := env.request(t, http.MethodPost, "/api/plans/start", token, fiber.Map{
		"professional_type": "astrologer",
		"patient_data":      models.PatientData{Name: "Paciente"},
	})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("start status = %d, want %d", response.StatusCode, http.StatusBadRequest)
	}
}

func TestStartPlanRequiresPatientName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	response := env.request(t, http.MethodPost, "/api/plans/start", token, fiber.Map{
		"professional_type": models.ProfessionalMedicalNutritionist,
		"patient_data":      models.PatientData{Age: 35},
	})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("start status = %d, want %d", response.StatusCode, http.StatusBadRequest)
	}
}

// Stages may arrive in any order; filling the matrix first must not touch
// the other stage columns.
func TestIFMMatrixAcceptedBeforeEarlierStages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := env.startPlan(t, token, models.ProfessionalOther, models.PatientData{Name: "Paciente", Age: 41})

	response := env.request(t, http.MethodPost, planPath(planID, "/ifm-matrix"), token, fiber.Map{
		"systems": map[string]string{"assimilation": "digestão irregular"},
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("ifm-matrix status = %d, want %d", response.StatusCode, http.StatusOK)
	}

	var stored models.PatientPlan
	if err := env.database.First(&stored, planID).Error; err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if stored.IFMMatrix == nil {
		t.Fatal("expected ifm matrix to be stored")
	}
	if stored.Questionnaire != nil || stored.LabResults != nil || stored.TCMObservations != nil || stored.Timeline != nil || stored.FinalPlan != nil {
		t.Fatal("other stage payloads must stay null when only the matrix was filled")
	}
}

func TestQuestionnaireRoundTripsAnswersExactly(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := env.startPlan(t, token, models.ProfessionalMedicalNutritionist, models.PatientData{Name: "Paciente"})

	answers := map[string]any{
		"sleep_hours":  float64(7),
		"cycle_length": "28 dias",
		"symptoms":     []any{"cólica", "enxaqueca"},
	}
	response := env.request(t, http.MethodPost, planPath(planID, "/questionnaire"), token, fiber.Map{
		"answers": answers,
		"notes":   "primeira consulta",
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("questionnaire status = %d, want %d", response.StatusCode, http.StatusOK)
	}

	var stored models.PatientPlan
	if err := env.database.First(&stored, planID).Error; err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if stored.Questionnaire == nil {
		t.Fatal("expected questionnaire to be stored")
	}
	if !reflect.DeepEqual(stored.Questionnaire.Answers, answers) {
		t.Fatalf("answers round-trip mismatch:\n got %#v\nwant %#v", stored.Questionnaire.Answers, answers)
	}
	if stored.Questionnaire.Notes != "primeira consulta" {
		t.Fatalf("notes = %q, want %q", stored.Questionnaire.Notes, "primeira consulta")
	}
	if stored.Questionnaire.Analysis == "" {
		t.Fatal("expected AI analysis to be attached to the questionnaire")
	}
}

func TestQuestionnaireSucceedsWhenAIFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := env.startPlan(t, token, models.ProfessionalMedicalNutritionist, models.PatientData{Name: "Paciente"})

	env.completer.err = errAITestOutage
	response := env.request(t, http.MethodPost, planPath(planID, "/questionnaire"), token, fiber.Map{
		"answers": map[string]any{"sleep_hours": 7},
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("questionnaire status = %d, want %d", response.StatusCode, http.StatusOK)
	}

	body := decodeBody(t, response)
	if body["ai_error"] == nil {
		t.Fatalf("expected ai_error in degraded response, got %v", body)
	}

	var stored models.PatientPlan
	if err := env.database.First(&stored, planID).Error; err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if stored.Questionnaire == nil {
		t.Fatal("questionnaire must be stored even when AI analysis fails")
	}
	if stored.Questionnaire.Analysis != "" {
		t.Fatalf("analysis should be empty after AI failure, got %q", stored.Questionnaire.Analysis)
	}
}

func TestListPlansReturnsOnlyOwnPlans(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	owner := env.createUser(t, "owner@example.com", models.RoleUser, company.ID)
	other := env.createUser(t, "other@example.com", models.RoleUser, company.ID)
	ownerToken := env.tokenFor(t, owner)
	otherToken := env.tokenFor(t, other)

	env.startPlan(t, ownerToken, models.ProfessionalOther, models.PatientData{Name: "A"})
	env.startPlan(t, ownerToken, models.ProfessionalOther, models.PatientData{Name: "B"})
	env.startPlan(t, otherToken, models.ProfessionalOther, models.PatientData{Name: "C"})

	response := env.request(t, http.MethodGet, "/api/plans", ownerToken, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want %d", response.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, response)
	plans, ok := body["plans"].([]any)
	if !ok {
		t.Fatalf("expected plans array, got %v", body)
	}
	if len(plans) != 2 {
		t.Fatalf("owner plan count = %d, want 2", len(plans))
	}
}
