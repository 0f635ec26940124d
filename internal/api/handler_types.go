package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lyz-health/lyz/internal/db"
	"github.com/lyz-health/lyz/internal/llm"
	"github.com/lyz-health/lyz/internal/membership"
	"github.com/lyz-health/lyz/internal/services"
	"github.com/lyz-health/lyz/internal/storage"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	secretKey []byte

	directory membership.Directory
	completer llm.CompletionClient
	store     storage.ObjectStore
	model     string

	repositories      *db.Repositories
	authService       *services.AuthService
	planService       *services.PlanService
	generationService *services.GenerationService
	exportService     *services.ExportService

	loginLimiter *attemptLimiter
}

const (
	accessTokenTTL  = 1 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour

	refreshTokenPurpose = "refresh"

	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

type authClaims struct {
	UserID    uint   `json:"uid"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID uint   `json:"company"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID  uint   `json:"uid"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}
