package db

import "gorm.io/gorm"

type Repositories struct {
	Companies   *CompanyRepository
	Users       *UserRepository
	Prompts     *PromptRepository
	TokenUsages *TokenUsageRepository
	Plans       *PlanRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Companies:   NewCompanyRepository(database),
		Users:       NewUserRepository(database),
		Prompts:     NewPromptRepository(database),
		TokenUsages: NewTokenUsageRepository(database),
		Plans:       NewPlanRepository(database),
	}
}
