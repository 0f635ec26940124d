package models

import "time"

// TokenUsage is an append-only billing ledger row. Rows are written once per
// successful completion call and are never updated or deleted.
type TokenUsage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	CompanyID  uint      `gorm:"not null;index" json:"company_id"`
	PromptID   uint      `gorm:"not null" json:"prompt_id"`
	TokensUsed int64     `gorm:"not null" json:"tokens_used"`
	Cost       float64   `gorm:"not null" json:"cost"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
