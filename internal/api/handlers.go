package api

import (
	"errors"

	"github.com/lyz-health/lyz/internal/llm"
	"github.com/lyz-health/lyz/internal/membership"
	"github.com/lyz-health/lyz/internal/storage"
	"gorm.io/gorm"
)

func NewHandler(
	database *gorm.DB,
	secretKey string,
	directory membership.Directory,
	completer llm.CompletionClient,
	store storage.ObjectStore,
	model string,
) (*Handler, error) {
	if secretKey == "" {
		return nil, errors.New("secret key is required")
	}

	handler := &Handler{
		db:           database,
		secretKey:    []byte(secretKey),
		directory:    directory,
		completer:    completer,
		store:        store,
		model:        model,
		loginLimiter: newAttemptLimiter(),
	}
	return handler.withDependencies(database), nil
}
