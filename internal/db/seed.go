package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lyz-health/lyz/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions configures the idempotent startup seed: one default company,
// one superadmin, and the seven wizard prompt templates.
type SeedOptions struct {
	CompanyName        string
	CompanyTokenLimit  int64
	SuperadminName     string
	SuperadminEmail    string
	SuperadminPassword string
}

const defaultSeedCompanyTokenLimit = 100000

func Seed(database *gorm.DB, options SeedOptions) error {
	repos := NewRepositories(database)

	company, err := ensureDefaultCompany(repos.Companies, options)
	if err != nil {
		return fmt.Errorf("seed default company: %w", err)
	}

	var editorID *uint
	if strings.TrimSpace(options.SuperadminEmail) != "" {
		superadmin, err := ensureSuperadmin(repos.Users, company.ID, options)
		if err != nil {
			return fmt.Errorf("seed superadmin: %w", err)
		}
		editorID = &superadmin.ID
	}

	for _, prompt := range defaultPrompts() {
		prompt.UpdatedBy = editorID
		if _, _, err := repos.Prompts.EnsureByStepKey(prompt); err != nil {
			return fmt.Errorf("seed prompt %s: %w", prompt.StepKey, err)
		}
	}

	return nil
}

func ensureDefaultCompany(companies *CompanyRepository, options SeedOptions) (models.Company, error) {
	existing, err := companies.FirstCompany()
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Company{}, err
	}

	name := strings.TrimSpace(options.CompanyName)
	if name == "" {
		name = "Lyz Healthcare"
	}
	limit := options.CompanyTokenLimit
	if limit <= 0 {
		limit = defaultSeedCompanyTokenLimit
	}

	company := models.Company{
		Name:       name,
		TokenLimit: limit,
		CreatedAt:  time.Now().UTC(),
	}
	if err := companies.Create(&company); err != nil {
		return models.Company{}, err
	}
	return company, nil
}

func ensureSuperadmin(users *UserRepository, companyID uint, options SeedOptions) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(options.SuperadminEmail))
	if email == "" {
		return models.User{}, errors.New("superadmin email is required")
	}

	existing, err := users.FindByNormalizedEmail(email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	if strings.TrimSpace(options.SuperadminPassword) == "" {
		return models.User{}, errors.New("superadmin password is required")
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(options.SuperadminPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	name := strings.TrimSpace(options.SuperadminName)
	if name == "" {
		name = "Lyz Admin"
	}

	superadmin := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleSuperadmin,
		CompanyID:    companyID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.Create(&superadmin); err != nil {
		return models.User{}, err
	}
	return superadmin, nil
}

func defaultPrompts() []models.Prompt {
	return []models.Prompt{
		{
			StepKey: models.StepQuestionnaireOrganization,
			Content: "Você é Lyz, a primeira assistente especializada em ciclicidade feminina. " +
				"Seu tom é profissional, elegante, delicado e amável. Analise os dados da paciente " +
				"e organize-os em: informações pessoais, histórico menstrual e hormonal, sintomas " +
				"principais, estilo de vida, histórico de saúde relevante e objetivos do tratamento.",
			Temperature: 0.7,
			MaxTokens:   1500,
		},
		{
			StepKey: models.StepLabResultsAnalysis,
			Content: "Você é Lyz, especialista em ciclicidade feminina. Analise os resultados " +
				"laboratoriais como um médico integrativo funcional: faixas de referência " +
				"convencionais, faixas ideais da medicina funcional, implicações para a " +
				"ciclicidade e correlações com os sintomas relatados.",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		{
			StepKey: models.StepTCMAnalysis,
			Content: "Você é Lyz. Com base nas observações de língua e pulso da medicina " +
				"tradicional chinesa, descreva padrões energéticos relevantes e relacione-os " +
				"ao quadro hormonal da paciente.",
			Temperature: 0.7,
			MaxTokens:   1500,
		},
		{
			StepKey: models.StepTimelineGeneration,
			Content: "Você é Lyz. Construa uma linha do tempo funcional da paciente, ordenando " +
				"eventos de vida e de saúde e destacando gatilhos e mediadores.",
			Temperature: 0.7,
			MaxTokens:   1500,
		},
		{
			StepKey: models.StepIFMMatrixGeneration,
			Content: "Você é Lyz. Preencha a matriz do Institute for Functional Medicine a partir " +
				"dos dados coletados, distribuindo sinais e sintomas entre os sistemas da matriz.",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		{
			StepKey: models.StepPlanMedicalNutritionist,
			Content: "Você é Lyz. Gere um plano cíclico personalizado para profissional " +
				"médico/nutricionista: recomendações alimentares, suplementação com doses, " +
				"mudanças de estilo de vida e orientações por fase do ciclo.",
			Temperature: 0.7,
			MaxTokens:   4000,
		},
		{
			StepKey: models.StepPlanOtherProfessional,
			Content: "Você é Lyz. Gere um plano cíclico personalizado para outros profissionais " +
				"de saúde, sem prescrições: orientações gerais de alimentação, estilo de vida e " +
				"práticas de bem-estar por fase do ciclo.",
			Temperature: 0.7,
			MaxTokens:   4000,
		},
	}
}
