package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lyz-health/lyz/internal/models"
)

func uploadLabResults(t *testing.T, env *testEnv, token string, planID uint, fileName string, extractedText string) *http.Response {
	t.Helper()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("laudo de exemplo")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if extractedText != "" {
		if err := writer.WriteField("extracted_text", extractedText); err != nil {
			t.Fatalf("write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, planPath(planID, "/lab-results"), &buffer)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("upload lab results: %v", err)
	}
	return response
}

func TestUploadLabResultsStoresFileAndAnalysis(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := env.startPlan(t, token, models.ProfessionalMedicalNutritionist, models.PatientData{Name: "Paciente"})
	response := uploadLabResults(t, env, token, planID, "hemograma.pdf", "hemoglobina 11.2 g/dL")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d, want %d", response.StatusCode, http.StatusOK)
	}

	var stored models.PatientPlan
	if err := env.database.First(&stored, planID).Error; err != nil {
		t.Fatalf("reload plan: %v", err)
	}
	if stored.LabResults == nil {
		t.Fatal("expected lab results to be stored")
	}
	if stored.LabResults.FileName != "hemograma.pdf" {
		t.Fatalf("file name = %q, want hemograma.pdf", stored.LabResults.FileName)
	}
	if !strings.Contains(stored.LabResults.FileURL, "lab-results/") {
		t.Fatalf("file url %q not under lab-results/", stored.LabResults.FileURL)
	}
	if stored.LabResults.Analysis == "" {
		t.Fatal("expected AI analysis on lab results")
	}

	env.store.mu.Lock()
	found := false
	for objectKey := range env.store.objects {
		if strings.HasPrefix(objectKey, "lab-results/") && strings.HasSuffix(objectKey, "_hemograma.pdf") {
			found = true
		}
	}
	env.store.mu.Unlock()
	if !found {
		t.Fatal("uploaded file not present in object store")
	}
}

func TestUploadLabResultsRequiresFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	planID := env.startPlan(t, token, models.ProfessionalMedicalNutritionist, models.PatientData{Name: "Paciente"})
	response := env.request(t, http.MethodPost, planPath(planID, "/lab-results"), token, nil)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("upload status = %d, want %d", response.StatusCode, http.StatusBadRequest)
	}
}
