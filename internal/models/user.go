package models

import "time"

const (
	RoleUser       = "user"
	RoleSuperadmin = "superadmin"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CursEducaID  string     `gorm:"column:curseduca_id" json:"curseduca_id,omitempty"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"not null;default:user" json:"role"`
	CompanyID    uint       `gorm:"not null;index" json:"company_id"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}

func (user *User) IsSuperadmin() bool {
	return user.Role == RoleSuperadmin
}
