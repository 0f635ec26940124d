package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/db"
	"github.com/lyz-health/lyz/internal/llm"
	"github.com/lyz-health/lyz/internal/membership"
	"github.com/lyz-health/lyz/internal/models"
	"github.com/lyz-health/lyz/internal/services"
	"gorm.io/gorm"
)

var errAITestOutage = errors.New("completion api unavailable")

const (
	testSecretKey          = "test-secret-key"
	testSuperadminEmail    = "admin@lyz.test"
	testSuperadminPassword = "Admin1234"
)

type stubDirectory struct {
	mu      sync.Mutex
	members map[string]membership.Member
	err     error
	calls   int
}

func (stub *stubDirectory) LookupByEmail(_ context.Context, email string) (membership.Member, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.calls++
	if stub.err != nil {
		return membership.Member{}, stub.err
	}
	member, ok := stub.members[email]
	if !ok {
		return membership.Member{}, membership.ErrMemberNotFound
	}
	return member, nil
}

type stubCompleter struct {
	mu       sync.Mutex
	response llm.CompletionResponse
	err      error
	calls    int
}

func (stub *stubCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.calls++
	if stub.err != nil {
		return llm.CompletionResponse{}, stub.err
	}
	return stub.response, nil
}

func (stub *stubCompleter) callCount() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.calls
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (store *memoryStore) Put(_ context.Context, objectKey string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.objects[objectKey] = data
	return nil
}

func (store *memoryStore) PresignedGetURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.objects[objectKey]; !ok {
		return "", errors.New("object not found")
	}
	return "https://files.test/" + objectKey, nil
}

type testEnv struct {
	app       *fiber.App
	handler   *Handler
	database  *gorm.DB
	directory *stubDirectory
	completer *stubCompleter
	store     *memoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "lyz-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.Seed(database, db.SeedOptions{
		SuperadminEmail:    testSuperadminEmail,
		SuperadminPassword: testSuperadminPassword,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	directory := &stubDirectory{members: make(map[string]membership.Member)}
	completer := &stubCompleter{response: llm.CompletionResponse{
		Content:     "conteúdo gerado de teste",
		Model:       llm.DefaultModel,
		TotalTokens: 120,
	}}
	store := newMemoryStore()

	handler, err := NewHandler(database, testSecretKey, directory, completer, store, "")
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)

	return &testEnv{
		app:       app,
		handler:   handler,
		database:  database,
		directory: directory,
		completer: completer,
		store:     store,
	}
}

func (env *testEnv) createUser(t *testing.T, email string, role string, companyID uint) models.User {
	t.Helper()

	passwordHash, err := services.HashPassword("Password1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Name:         email,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CompanyID:    companyID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := env.database.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func (env *testEnv) createCompany(t *testing.T, name string, tokenLimit int64) models.Company {
	t.Helper()

	company := models.Company{
		Name:       name,
		TokenLimit: tokenLimit,
		CreatedAt:  time.Now().UTC(),
	}
	if err := env.database.Create(&company).Error; err != nil {
		t.Fatalf("create company %s: %v", name, err)
	}
	return company
}

func (env *testEnv) defaultCompany(t *testing.T) models.Company {
	t.Helper()

	company, err := db.NewRepositories(env.database).Companies.FirstCompany()
	if err != nil {
		t.Fatalf("load default company: %v", err)
	}
	return company
}

func (env *testEnv) superadmin(t *testing.T) models.User {
	t.Helper()

	var user models.User
	if err := env.database.Where("email = ?", testSuperadminEmail).First(&user).Error; err != nil {
		t.Fatalf("load superadmin: %v", err)
	}
	return user
}

func (env *testEnv) tokenFor(t *testing.T, user models.User) string {
	t.Helper()

	token, err := env.handler.buildAccessToken(&user, time.Now())
	if err != nil {
		t.Fatalf("build access token: %v", err)
	}
	return token
}

func (env *testEnv) request(t *testing.T, method string, path string, token string, body any) *http.Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		payload = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, payload)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return response
}

func decodeBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()

	defer response.Body.Close()
	decoded := map[string]any{}
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return decoded
}

func (env *testEnv) startPlan(t *testing.T, token string, professionalType string, patient models.PatientData) uint {
	t.Helper()

	response := env.request(t, http.MethodPost, "/api/plans/start", token, fiber.Map{
		"professional_type": professionalType,
		"patient_data":      patient,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("start plan status = %d, want %d", response.StatusCode, http.StatusCreated)
	}
	body := decodeBody(t, response)
	plan, ok := body["plan"].(map[string]any)
	if !ok {
		t.Fatalf("start plan response missing plan: %v", body)
	}
	id, ok := plan["id"].(float64)
	if !ok {
		t.Fatalf("start plan response missing id: %v", plan)
	}
	return uint(id)
}

func planPath(planID uint, suffix string) string {
	return fmt.Sprintf("/api/plans/%d%s", planID, suffix)
}

func membershipMember(id string, name string, email string) membership.Member {
	return membership.Member{ID: id, Name: name, Email: email}
}
