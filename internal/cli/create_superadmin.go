package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lyz-health/lyz/internal/db"
	"github.com/lyz-health/lyz/internal/models"
	"github.com/lyz-health/lyz/internal/services"
	"gorm.io/gorm"
)

// RunCreateSuperadminCommand provisions a back-office account from the
// terminal, prompting for the password without echo. This is the only
// registration path that skips the membership directory.
func RunCreateSuperadminCommand(dbPath string, email string, name string) error {
	normalizedEmail := services.NormalizeAuthEmail(email)
	if normalizedEmail == "" {
		return errors.New("a valid email is required")
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	repositories := db.NewRepositories(database)
	taken, err := repositories.Users.ExistsByNormalizedEmail(normalizedEmail)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return fmt.Errorf("user %s already exists", normalizedEmail)
	}

	password, err := promptPasswordTwice()
	if err != nil {
		return err
	}
	if err := services.ValidatePasswordStrength(password); err != nil {
		return err
	}

	company, err := repositories.Companies.FirstCompany()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load company: %w", err)
		}
		company = models.Company{
			Name:       "Lyz Healthcare",
			TokenLimit: models.DefaultCompanyTokenLimit,
			CreatedAt:  time.Now().UTC(),
		}
		if err := repositories.Companies.Create(&company); err != nil {
			return fmt.Errorf("create default company: %w", err)
		}
	}

	passwordHash, err := services.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(name)
	if displayName == "" {
		displayName = normalizedEmail
	}

	user := models.User{
		Name:         displayName,
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleSuperadmin,
		CompanyID:    company.ID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repositories.Users.Create(&user); err != nil {
		return fmt.Errorf("create superadmin: %w", err)
	}

	fmt.Printf("✅ Superadmin %s created (company %q)\n", normalizedEmail, company.Name)
	return nil
}

func promptPasswordTwice() (string, error) {
	fmt.Print("Password: ")
	first, err := readPasswordNoEcho(os.Stdin)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Print("Confirm password: ")
	second, err := readPasswordNoEcho(os.Stdin)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password confirmation: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
