package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/models"
	"github.com/lyz-health/lyz/internal/services"
	"gorm.io/gorm"
)

type adminUserInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CompanyID uint   `json:"company_id"`
}

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	handler.ensureDependencies()

	companyID, _ := queryUint(c, "company_id")
	users, err := handler.repositories.Users.List(companyID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, viewForUser(user))
	}
	return c.JSON(fiber.Map{"users": views})
}

// CreateUser provisions an account directly, bypassing the membership
// directory. This is how additional superadmins come to exist.
func (handler *Handler) CreateUser(c *fiber.Ctx) error {
	input := adminUserInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := services.NormalizeAuthEmail(input.Email)
	if email == "" {
		return apiError(c, fiber.StatusBadRequest, "a valid email is required")
	}
	if err := services.ValidatePasswordStrength(input.Password); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleSuperadmin {
		return apiError(c, fiber.StatusBadRequest, "role must be user or superadmin")
	}

	handler.ensureDependencies()
	if input.CompanyID == 0 {
		return apiError(c, fiber.StatusBadRequest, "company_id is required")
	}
	if _, err := handler.repositories.Companies.FindByID(input.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError(c, fiber.StatusNotFound, "company not found")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to create user")
	}

	taken, err := handler.repositories.Users.ExistsByNormalizedEmail(email)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create user")
	}
	if taken {
		return apiError(c, fiber.StatusConflict, "email already registered")
	}

	passwordHash, err := services.HashPassword(input.Password)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to secure password")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = email
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CompanyID:    input.CompanyID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := handler.repositories.Users.Create(&user); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create user")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": viewForUser(user)})
}

func (handler *Handler) GetUser(c *fiber.Ctx) error {
	user, err := handler.userForRequest(c)
	if err != nil {
		return err
	}

	planCount, err := handler.repositories.Plans.CountByUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load user")
	}
	tokensUsed, err := handler.repositories.TokenUsages.SumTokensByUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load user")
	}

	return c.JSON(fiber.Map{
		"user": viewForUser(user),
		"stats": fiber.Map{
			"plans":       planCount,
			"tokens_used": tokensUsed,
		},
	})
}

func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	user, err := handler.userForRequest(c)
	if err != nil {
		return err
	}

	input := adminUserInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if strings.TrimSpace(input.Email) != "" {
		email := services.NormalizeAuthEmail(input.Email)
		if email == "" {
			return apiError(c, fiber.StatusBadRequest, "a valid email is required")
		}
		if email != user.Email {
			taken, err := handler.repositories.Users.ExistsByNormalizedEmail(email)
			if err != nil {
				return apiError(c, fiber.StatusInternalServerError, "failed to update user")
			}
			if taken {
				return apiError(c, fiber.StatusConflict, "email already registered")
			}
			updates["email"] = email
		}
	}
	if role := strings.TrimSpace(input.Role); role != "" {
		if role != models.RoleUser && role != models.RoleSuperadmin {
			return apiError(c, fiber.StatusBadRequest, "role must be user or superadmin")
		}
		updates["role"] = role
	}
	if input.CompanyID != 0 && input.CompanyID != user.CompanyID {
		if _, err := handler.repositories.Companies.FindByID(input.CompanyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apiError(c, fiber.StatusNotFound, "company not found")
			}
			return apiError(c, fiber.StatusInternalServerError, "failed to update user")
		}
		updates["company_id"] = input.CompanyID
	}
	if strings.TrimSpace(input.Password) != "" {
		if err := services.ValidatePasswordStrength(input.Password); err != nil {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		passwordHash, err := services.HashPassword(input.Password)
		if err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to secure password")
		}
		updates["password_hash"] = passwordHash
	}
	if len(updates) == 0 {
		return apiError(c, fiber.StatusBadRequest, "nothing to update")
	}

	if err := handler.repositories.Users.UpdateByID(user.ID, updates); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to update user")
	}

	updated, err := handler.repositories.Users.FindByID(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load user")
	}
	return c.JSON(fiber.Map{"user": viewForUser(updated)})
}

// DeleteUser refuses while the account still owns plans; patient documents
// are never silently orphaned.
func (handler *Handler) DeleteUser(c *fiber.Ctx) error {
	user, err := handler.userForRequest(c)
	if err != nil {
		return err
	}

	planCount, err := handler.repositories.Plans.CountByUser(user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to delete user")
	}
	if planCount > 0 {
		return apiError(c, fiber.StatusBadRequest, "user still has plans")
	}

	if err := handler.repositories.Users.Delete(user.ID); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to delete user")
	}
	return c.JSON(fiber.Map{"deleted": true})
}

func (handler *Handler) userForRequest(c *fiber.Ctx) (models.User, error) {
	userID, err := paramUint(c, "id")
	if err != nil {
		return models.User{}, apiError(c, fiber.StatusBadRequest, "invalid user id")
	}

	handler.ensureDependencies()
	user, err := handler.repositories.Users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apiError(c, fiber.StatusNotFound, "user not found")
		}
		return models.User{}, apiError(c, fiber.StatusInternalServerError, "failed to load user")
	}
	return user, nil
}
