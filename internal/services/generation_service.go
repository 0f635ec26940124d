package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lyz-health/lyz/internal/llm"
	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

var (
	ErrTokenBudgetExceeded = errors.New("company token limit reached")
	ErrPromptNotFound      = errors.New("prompt not found for step")
)

type GenerationPromptRepository interface {
	FindByStepKey(stepKey string) (models.Prompt, error)
}

type GenerationCompanyRepository interface {
	FindByID(companyID uint) (models.Company, error)
}

type GenerationUsageRepository interface {
	SumTokensByCompany(companyID uint) (int64, error)
	Create(usage *models.TokenUsage) error
}

// GenerationService is the gateway in front of the completion API: template
// lookup, tenant budget enforcement, one synchronous call, one ledger row.
type GenerationService struct {
	prompts   GenerationPromptRepository
	companies GenerationCompanyRepository
	usage     GenerationUsageRepository
	completer llm.CompletionClient
	model     string

	// Budget check and ledger insert for one tenant never interleave; two
	// requests racing past the check used to jointly overrun the limit.
	mu           sync.Mutex
	companyLocks map[uint]*sync.Mutex
}

func NewGenerationService(
	prompts GenerationPromptRepository,
	companies GenerationCompanyRepository,
	usage GenerationUsageRepository,
	completer llm.CompletionClient,
	model string,
) *GenerationService {
	if model == "" {
		model = llm.DefaultModel
	}
	return &GenerationService{
		prompts:      prompts,
		companies:    companies,
		usage:        usage,
		completer:    completer,
		model:        model,
		companyLocks: make(map[uint]*sync.Mutex),
	}
}

// GenerationResult is the tagged outcome callers degrade on: a failed
// generation never fails the enclosing request.
type GenerationResult struct {
	OK         bool
	Content    string
	TokensUsed int64
	Message    string
}

func failedGeneration(message string) GenerationResult {
	return GenerationResult{OK: false, Message: message}
}

// Generate runs one completion for the given wizard step. Exactly one API
// attempt; all failure modes come back as a tagged result.
func (service *GenerationService) Generate(ctx context.Context, userID uint, companyID uint, stepKey string, input any) GenerationResult {
	lock := service.lockForCompany(companyID)
	lock.Lock()
	defer lock.Unlock()

	if err := service.checkBudget(companyID); err != nil {
		return failedGeneration(err.Error())
	}

	prompt, err := service.prompts.FindByStepKey(stepKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failedGeneration(fmt.Sprintf("%s: %s", ErrPromptNotFound.Error(), stepKey))
		}
		return failedGeneration(err.Error())
	}

	encodedInput, err := json.Marshal(input)
	if err != nil {
		return failedGeneration(fmt.Sprintf("encode generation input: %v", err))
	}

	response, err := service.completer.Complete(ctx, llm.CompletionRequest{
		Model: service.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompt.Content},
			{Role: llm.RoleUser, Content: string(encodedInput)},
		},
		Temperature: prompt.Temperature,
		MaxTokens:   prompt.MaxTokens,
	})
	if err != nil {
		return failedGeneration(err.Error())
	}

	usage := models.TokenUsage{
		UserID:     userID,
		CompanyID:  companyID,
		PromptID:   prompt.ID,
		TokensUsed: response.TotalTokens,
		Cost:       CostForTokens(response.Model, response.TotalTokens),
		CreatedAt:  time.Now().UTC(),
	}
	if err := service.usage.Create(&usage); err != nil {
		return failedGeneration(fmt.Sprintf("record token usage: %v", err))
	}

	return GenerationResult{
		OK:         true,
		Content:    response.Content,
		TokensUsed: response.TotalTokens,
	}
}

// TokensRemaining reports the unconsumed share of a company budget.
func (service *GenerationService) TokensRemaining(companyID uint) (int64, error) {
	company, err := service.companies.FindByID(companyID)
	if err != nil {
		return 0, err
	}
	used, err := service.usage.SumTokensByCompany(companyID)
	if err != nil {
		return 0, err
	}
	return company.TokenLimit - used, nil
}

func (service *GenerationService) checkBudget(companyID uint) error {
	company, err := service.companies.FindByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("company not found")
		}
		return err
	}

	used, err := service.usage.SumTokensByCompany(companyID)
	if err != nil {
		return err
	}
	if used >= company.TokenLimit {
		return ErrTokenBudgetExceeded
	}
	return nil
}

func (service *GenerationService) lockForCompany(companyID uint) *sync.Mutex {
	service.mu.Lock()
	defer service.mu.Unlock()

	lock, exists := service.companyLocks[companyID]
	if !exists {
		lock = &sync.Mutex{}
		service.companyLocks[companyID] = lock
	}
	return lock
}
