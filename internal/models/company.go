package models

import "time"

const DefaultCompanyTokenLimit = 10000

type Company struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	TokenLimit int64     `gorm:"not null;default:10000" json:"token_limit"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
