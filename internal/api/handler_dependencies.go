package api

import (
	"github.com/lyz-health/lyz/internal/db"
	"github.com/lyz-health/lyz/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.authService = services.NewAuthService(handler.repositories.Users)
	handler.planService = services.NewPlanService(handler.repositories.Plans)
	handler.generationService = services.NewGenerationService(
		handler.repositories.Prompts,
		handler.repositories.Companies,
		handler.repositories.TokenUsages,
		handler.completer,
		handler.model,
	)
	handler.exportService = services.NewExportService(handler.store)
	return handler
}

func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}

	if handler.authService == nil {
		handler.authService = services.NewAuthService(handler.repositories.Users)
	}
	if handler.planService == nil {
		handler.planService = services.NewPlanService(handler.repositories.Plans)
	}
	if handler.generationService == nil {
		handler.generationService = services.NewGenerationService(
			handler.repositories.Prompts,
			handler.repositories.Companies,
			handler.repositories.TokenUsages,
			handler.completer,
			handler.model,
		)
	}
	if handler.exportService == nil {
		handler.exportService = services.NewExportService(handler.store)
	}
	if handler.loginLimiter == nil {
		handler.loginLimiter = newAttemptLimiter()
	}
}
