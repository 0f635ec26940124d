package db

import (
	"github.com/lyz-health/lyz/internal/models"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	database *gorm.DB
}

func NewCompanyRepository(database *gorm.DB) *CompanyRepository {
	return &CompanyRepository{database: database}
}

func (repo *CompanyRepository) Create(company *models.Company) error {
	return repo.database.Create(company).Error
}

func (repo *CompanyRepository) FindByID(companyID uint) (models.Company, error) {
	var company models.Company
	if err := repo.database.First(&company, companyID).Error; err != nil {
		return models.Company{}, err
	}
	return company, nil
}

func (repo *CompanyRepository) FirstCompany() (models.Company, error) {
	var company models.Company
	if err := repo.database.Order("id ASC").First(&company).Error; err != nil {
		return models.Company{}, err
	}
	return company, nil
}

func (repo *CompanyRepository) List() ([]models.Company, error) {
	companies := make([]models.Company, 0)
	if err := repo.database.Order("created_at DESC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (repo *CompanyRepository) Count() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Company{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *CompanyRepository) UpdateByID(companyID uint, updates map[string]any) error {
	return repo.database.Model(&models.Company{}).Where("id = ?", companyID).Updates(updates).Error
}

func (repo *CompanyRepository) Delete(companyID uint) error {
	return repo.database.Delete(&models.Company{}, companyID).Error
}
