package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lyz-health/lyz/internal/services"
)

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func parseCredentials(c *fiber.Ctx) (credentialsInput, error) {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return credentialsInput{}, err
	}

	email, password, err := services.NormalizeCredentialsInput(input.Email, input.Password)
	if err != nil {
		return credentialsInput{}, err
	}
	return credentialsInput{Email: email, Password: password}, nil
}

func parseRefreshInput(c *fiber.Ctx) (string, error) {
	input := struct {
		RefreshToken string `json:"refresh_token"`
	}{}
	if err := c.BodyParser(&input); err != nil {
		return "", err
	}

	token := strings.TrimSpace(input.RefreshToken)
	if token == "" {
		return "", errors.New("refresh token is required")
	}
	return token, nil
}
