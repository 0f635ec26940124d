package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
)

func TestRefreshRejectsAccessTokenAsRefreshToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)
	accessToken := env.tokenFor(t, user)

	response := env.request(t, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
		"refresh_token": accessToken,
	})
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("refresh status = %d, want %d", response.StatusCode, http.StatusForbidden)
	}
}

func TestRefreshReturnsNewPair(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	env.createUser(t, "pro@example.com", models.RoleUser, company.ID)

	login := env.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "pro@example.com",
		"password": "Password1",
	})
	if login.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", login.StatusCode, http.StatusOK)
	}
	loginBody := decodeBody(t, login)
	refreshToken, _ := loginBody["refresh_token"].(string)
	if refreshToken == "" {
		t.Fatalf("login response missing refresh_token: %v", loginBody)
	}

	response := env.request(t, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
		"refresh_token": refreshToken,
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d, want %d", response.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, response)
	if body["access_token"] == nil || body["refresh_token"] == nil {
		t.Fatalf("expected fresh token pair, got %v", body)
	}
}

func TestRefreshForDeletedAccountFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	user := env.createUser(t, "pro@example.com", models.RoleUser, company.ID)

	login := env.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "pro@example.com",
		"password": "Password1",
	})
	loginBody := decodeBody(t, login)
	refreshToken, _ := loginBody["refresh_token"].(string)

	if err := env.database.Delete(&models.User{}, user.ID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	response := env.request(t, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
		"refresh_token": refreshToken,
	})
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("refresh status = %d, want %d", response.StatusCode, http.StatusNotFound)
	}
}

func TestValidateEmailStatuses(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	company := env.defaultCompany(t)
	env.createUser(t, "taken@example.com", models.RoleUser, company.ID)
	env.directory.members["member@example.com"] = membershipMember("cur-7", "Ana", "member@example.com")

	missing := env.request(t, http.MethodGet, "/api/auth/validate-email", "", nil)
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing email status = %d, want %d", missing.StatusCode, http.StatusBadRequest)
	}

	taken := env.request(t, http.MethodGet, "/api/auth/validate-email?email=taken@example.com", "", nil)
	if taken.StatusCode != http.StatusConflict {
		t.Fatalf("registered email status = %d, want %d", taken.StatusCode, http.StatusConflict)
	}

	unknown := env.request(t, http.MethodGet, "/api/auth/validate-email?email=ghost@example.com", "", nil)
	if unknown.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown member status = %d, want %d", unknown.StatusCode, http.StatusNotFound)
	}

	valid := env.request(t, http.MethodGet, "/api/auth/validate-email?email=member@example.com", "", nil)
	if valid.StatusCode != http.StatusOK {
		t.Fatalf("valid member status = %d, want %d", valid.StatusCode, http.StatusOK)
	}
	body := decodeBody(t, valid)
	member, ok := body["member"].(map[string]any)
	if !ok || member["name"] != "Ana" {
		t.Fatalf("expected member data, got %v", body)
	}
}
