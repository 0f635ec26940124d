package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
)

func TestAdminSurfaceForbiddenForRegularUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	token := env.tokenFor(t, user)

	for _, path := range []string{"/api/admin/dashboard", "/api/admin/companies", "/api/admin/users", "/api/admin/prompts", "/api/admin/tokens/usage"} {
		response := env.request(t, http.MethodGet, path, token, nil)
		if response.StatusCode != http.StatusForbidden {
			t.Fatalf("GET %s status = %d, want %d", path, response.StatusCode, http.StatusForbidden)
		}
	}
}

func TestCreateCompanyRequiresName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.tokenFor(t, env.superadmin(t))

	response := env.request(t, http.MethodPost, "/api/admin/companies", token, fiber.Map{"name": "  "})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("create status = %d, want %d", response.StatusCode, http.StatusBadRequest)
	}
}

func TestCreateCompanyDefaultsTokenLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.tokenFor(t, env.superadmin(t))

	response := env.request(t, http.MethodPost, "/api/admin/companies", token, fiber.Map{"name": "Nova Clínica"})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", response.StatusCode, http.StatusCreated)
	}

	body := decodeBody(t, response)
	company, ok := body["company"].(map[string]any)
	if !ok {
		t.Fatalf("expected company in response, got %v", body)
	}
	if limit, _ := company["token_limit"].(float64); int64(limit) != models.DefaultCompanyTokenLimit {
		t.Fatalf("token_limit = %v, want %d", company["token_limit"], models.DefaultCompanyTokenLimit)
	}
}

func TestDeleteCompanyBlockedWhileUsersRemain(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.tokenFor(t, env.superadmin(t))

	occupied := env.createCompany(t, "Ocupada", 5000)
	env.createUser(t, "member@example.com", models.RoleUser, occupied.ID)

	response := env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/companies/%d", occupied.ID), token, nil)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("delete status = %d, want %d", response.StatusCode, http.StatusBadRequest)
	}

	empty := env.createCompany(t, "Vazia", 5000)
	response = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/companies/%d", empty.ID), token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("delete empty status = %d, want %d", response.StatusCode, http.StatusOK)
	}
}

func TestGetCompanyReportsTokenStats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token := env.tokenFor(t, env.superadmin(t))

	clinic := env.createCompany(t, "Clínica", 5000)
	user := env.createUser(t, "member@example.com", models.RoleUser, clinic.ID)
	usage := models.TokenUsage{UserID: user.ID, CompanyID: clinic.ID, PromptID: 1, TokensUsed: 1200, Cost: 0.0024}
	if err := env.database.Create(&usage).Error; err != nil {
		t.Fatalf("insert usage: %v", err)
	}

	response := env.request(t, http.MethodGet, fmt.Sprintf("/api/admin/companies/%d", clinic.ID), token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want %d", response.StatusCode, http.StatusOK)
	}

	body := decodeBody(t, response)
	stats, ok := body["stats"].(map[string]any)
	if !ok {
		t.Fatalf("expected stats, got %v", body)
	}
	if used, _ := stats["tokens_used"].(float64); int64(used) != 1200 {
		t.Fatalf("tokens_used = %v, want 1200", stats["tokens_used"])
	}
	if remaining, _ := stats["tokens_remaining"].(float64); int64(remaining) != 3800 {
		t.Fatalf("tokens_remaining = %v, want 3800", stats["tokens_remaining"])
	}
}
