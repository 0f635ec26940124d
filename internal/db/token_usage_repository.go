package db

import (
	"time"

	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

type TokenUsageRepository struct {
	database *gorm.DB
}

func NewTokenUsageRepository(database *gorm.DB) *TokenUsageRepository {
	return &TokenUsageRepository{database: database}
}

// UsageFilter narrows ledger queries. Zero values mean "no filter".
type UsageFilter struct {
	From      *time.Time
	To        *time.Time
	CompanyID uint
	UserID    uint
}

type DailyUsageRow struct {
	Day    string  `gorm:"column:day" json:"date"`
	Tokens int64   `gorm:"column:tokens" json:"tokens"`
	Cost   float64 `gorm:"column:cost" json:"cost"`
}

type CompanyUsageRow struct {
	CompanyID uint    `gorm:"column:company_id" json:"company_id"`
	Tokens    int64   `gorm:"column:tokens" json:"tokens"`
	Cost      float64 `gorm:"column:cost" json:"cost"`
}

func (repo *TokenUsageRepository) Create(usage *models.TokenUsage) error {
	return repo.database.Create(usage).Error
}

func (repo *TokenUsageRepository) SumTokensByCompany(companyID uint) (int64, error) {
	return repo.sumColumn("tokens_used", UsageFilter{CompanyID: companyID})
}

func (repo *TokenUsageRepository) SumTokensByUser(userID uint) (int64, error) {
	return repo.sumColumn("tokens_used", UsageFilter{UserID: userID})
}

func (repo *TokenUsageRepository) SumTokens(filter UsageFilter) (int64, error) {
	return repo.sumColumn("tokens_used", filter)
}

func (repo *TokenUsageRepository) SumCost(filter UsageFilter) (float64, error) {
	var total *float64
	query := repo.applyFilter(repo.database.Model(&models.TokenUsage{}), filter)
	if err := query.Select("SUM(cost)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (repo *TokenUsageRepository) ListFiltered(filter UsageFilter) ([]models.TokenUsage, error) {
	usages := make([]models.TokenUsage, 0)
	query := repo.applyFilter(repo.database.Model(&models.TokenUsage{}), filter)
	if err := query.Order("created_at DESC").Find(&usages).Error; err != nil {
		return nil, err
	}
	return usages, nil
}

func (repo *TokenUsageRepository) DailyTotalsSince(since time.Time) ([]DailyUsageRow, error) {
	rows := make([]DailyUsageRow, 0)
	err := repo.database.Model(&models.TokenUsage{}).
		Select("date(created_at) AS day, SUM(tokens_used) AS tokens, SUM(cost) AS cost").
		Where("created_at >= ?", since).
		Group("date(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *TokenUsageRepository) TotalsByCompany() ([]CompanyUsageRow, error) {
	rows := make([]CompanyUsageRow, 0)
	err := repo.database.Model(&models.TokenUsage{}).
		Select("company_id, SUM(tokens_used) AS tokens, SUM(cost) AS cost").
		Group("company_id").
		Order("tokens DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (repo *TokenUsageRepository) sumColumn(column string, filter UsageFilter) (int64, error) {
	var total *int64
	query := repo.applyFilter(repo.database.Model(&models.TokenUsage{}), filter)
	if err := query.Select("SUM(" + column + ")").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (repo *TokenUsageRepository) applyFilter(query *gorm.DB, filter UsageFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.CompanyID != 0 {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	return query
}
