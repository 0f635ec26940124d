package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lyz-health/lyz/internal/models"
)

func (handler *Handler) buildAccessToken(user *models.User, now time.Time) (string, error) {
	claims := authClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) buildRefreshToken(user *models.User, now time.Time) (string, error) {
	claims := refreshClaims{
		UserID:  user.ID,
		Purpose: refreshTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

// parseRefreshToken rejects access tokens presented as refresh tokens; the
// two are distinguished by the purpose claim.
func (handler *Handler) parseRefreshToken(raw string) (uint, error) {
	claims := refreshClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid refresh token")
	}
	if claims.Purpose != refreshTokenPurpose {
		return 0, errors.New("not a refresh token")
	}
	return claims.UserID, nil
}

func (handler *Handler) issueTokenPair(user *models.User) (string, string, error) {
	now := time.Now()
	accessToken, err := handler.buildAccessToken(user, now)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := handler.buildRefreshToken(user, now)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
