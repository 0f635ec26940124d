package api

import (
	"time"

	"github.com/lyz-health/lyz/internal/models"
)

type userView struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CompanyID uint       `json:"company_id"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func viewForUser(user models.User) userView {
	return userView{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}
