package services

import (
	"errors"
	"strings"
	"time"

	"github.com/lyz-health/lyz/internal/membership"
	"github.com/lyz-health/lyz/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	UpdateLastLogin(userID uint, at time.Time) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

func (service *AuthService) EmailRegistered(email string) (bool, error) {
	return service.users.ExistsByNormalizedEmail(email)
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}

// Authenticate verifies the password, stamps last_login, and returns the
// user. Unknown email and wrong password are indistinguishable to callers.
func (service *AuthService) Authenticate(email string, password string) (models.User, error) {
	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := service.users.UpdateLastLogin(user.ID, now); err != nil {
		return models.User{}, err
	}
	user.LastLogin = &now

	return user, nil
}

// RegisterProfessional creates an account from validated directory data.
// Role is always `user`; superadmins are provisioned elsewhere.
func (service *AuthService) RegisterProfessional(member membership.Member, password string, companyID uint) (models.User, error) {
	email := NormalizeAuthEmail(member.Email)
	if email == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}

	taken, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrEmailTaken
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	name := strings.TrimSpace(member.Name)
	if name == "" {
		name = email
	}

	user := models.User{
		CursEducaID:  member.ID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		CompanyID:    companyID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
