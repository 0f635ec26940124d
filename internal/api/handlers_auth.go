package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/membership"
	"github.com/lyz-health/lyz/internal/services"
)

// ValidateEmail checks an email against the membership directory before the
// frontend lets the candidate pick a password.
func (handler *Handler) ValidateEmail(c *fiber.Ctx) error {
	email := services.NormalizeAuthEmail(c.Query("email"))
	if email == "" {
		return apiError(c, fiber.StatusBadRequest, "a valid email is required")
	}

	handler.ensureDependencies()
	registered, err := handler.authService.EmailRegistered(email)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to validate email")
	}
	if registered {
		return apiError(c, fiber.StatusConflict, "email already registered")
	}

	member, err := handler.directory.LookupByEmail(c.Context(), email)
	if err != nil {
		return membershipLookupError(c, err)
	}

	return c.JSON(fiber.Map{
		"valid": true,
		"member": fiber.Map{
			"id":    member.ID,
			"name":  member.Name,
			"email": member.Email,
		},
	})
}

// Register creates an account for a verified member. The directory is
// consulted again here so a stale validate-email response cannot be replayed
// into an account.
func (handler *Handler) Register(c *fiber.Ctx) error {
	credentials, err := parseCredentials(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "email and password are required")
	}
	if err := services.ValidatePasswordStrength(credentials.Password); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	handler.ensureDependencies()
	member, err := handler.directory.LookupByEmail(c.Context(), credentials.Email)
	if err != nil {
		if errors.Is(err, membership.ErrMemberNotFound) {
			return apiError(c, fiber.StatusBadRequest, "email is not an active member")
		}
		return membershipLookupError(c, err)
	}

	company, err := handler.repositories.Companies.FirstCompany()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "no company configured")
	}

	user, err := handler.authService.RegisterProfessional(member, credentials.Password, company.ID)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return apiError(c, fiber.StatusConflict, "email already registered")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to create account")
	}

	accessToken, refreshToken, err := handler.issueTokenPair(&user)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":          viewForUser(user),
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	credentials, err := parseCredentials(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "email and password are required")
	}

	now := time.Now()
	if handler.loginLimiter.tooManyRecent(credentials.Email, now, loginAttemptLimit, loginAttemptWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts, try again later")
	}

	handler.ensureDependencies()
	user, err := handler.authService.Authenticate(credentials.Email, credentials.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.addFailure(credentials.Email, now, loginAttemptWindow)
			return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return apiError(c, fiber.StatusInternalServerError, "failed to sign in")
	}
	handler.loginLimiter.reset(credentials.Email)

	accessToken, refreshToken, err := handler.issueTokenPair(&user)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}

	return c.JSON(fiber.Map{
		"user":          viewForUser(user),
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Refresh exchanges a refresh token for a fresh pair. The account is loaded
// so tokens for removed users stop working immediately.
func (handler *Handler) Refresh(c *fiber.Ctx) error {
	raw, err := parseRefreshInput(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "refresh token is required")
	}

	userID, err := handler.parseRefreshToken(raw)
	if err != nil {
		return apiError(c, fiber.StatusForbidden, "invalid refresh token")
	}

	handler.ensureDependencies()
	user, err := handler.authService.FindByID(userID)
	if err != nil {
		return apiError(c, fiber.StatusNotFound, "account not found")
	}

	accessToken, refreshToken, err := handler.issueTokenPair(&user)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to refresh session")
	}

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func membershipLookupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, membership.ErrMemberNotFound):
		return apiError(c, fiber.StatusNotFound, "email is not an active member")
	case errors.Is(err, membership.ErrUnauthorized):
		return apiError(c, fiber.StatusBadGateway, "membership service rejected the request")
	default:
		return apiError(c, fiber.StatusBadGateway, "membership service unavailable")
	}
}
