package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/lyz-health/lyz/internal/api"
	"github.com/lyz-health/lyz/internal/cli"
	"github.com/lyz-health/lyz/internal/db"
	"github.com/lyz-health/lyz/internal/llm"
	"github.com/lyz-health/lyz/internal/membership"
	"github.com/lyz-health/lyz/internal/storage"
)

func main() {
	_ = godotenv.Load()

	createSuperadmin := flag.String("create-superadmin", "", "create a superadmin with the given email and exit")
	superadminName := flag.String("superadmin-name", "", "display name for -create-superadmin")
	resetPassword := flag.String("reset-password", "", "reset the password of the given email and exit")
	flag.Parse()

	dbPath := getEnv("DB_PATH", filepath.Join("data", "lyz.db"))

	if *createSuperadmin != "" {
		if err := cli.RunCreateSuperadminCommand(dbPath, *createSuperadmin, *superadminName); err != nil {
			log.Fatalf("create superadmin failed: %v", err)
		}
		return
	}
	if *resetPassword != "" {
		if err := cli.RunResetPasswordCommand(dbPath, *resetPassword); err != nil {
			log.Fatalf("password reset failed: %v", err)
		}
		return
	}

	secretKey := getEnv("JWT_SECRET", "change_me_in_production")
	port := getEnv("PORT", "3001")

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	if err := db.Seed(database, db.SeedOptions{
		CompanyName:        getEnv("DEFAULT_COMPANY_NAME", ""),
		CompanyTokenLimit:  getEnvInt64("DEFAULT_COMPANY_TOKEN_LIMIT", 0),
		SuperadminName:     getEnv("SUPERADMIN_NAME", ""),
		SuperadminEmail:    getEnv("SUPERADMIN_EMAIL", ""),
		SuperadminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
	}); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	directory := membership.NewClient(membership.Config{
		BaseURL: getEnv("CURSEDUCA_API_URL", ""),
		APIKey:  getEnv("CURSEDUCA_API_KEY", ""),
	})

	completer := llm.NewClient(llm.Config{
		BaseURL: getEnv("OPENAI_BASE_URL", ""),
		APIKey:  getEnv("OPENAI_API_KEY", ""),
		Model:   getEnv("OPENAI_MODEL", ""),
	})

	store, err := buildObjectStore()
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	handler, err := api.NewHandler(database, secretKey, directory, completer, store, getEnv("OPENAI_MODEL", ""))
	if err != nil {
		log.Fatalf("handler init failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Lyz",
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Lyz listening on http://0.0.0.0:%s (db: %s)", port, dbPath)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// buildObjectStore prefers MinIO when an endpoint is configured and falls
// back to the on-disk store for local development.
func buildObjectStore() (storage.ObjectStore, error) {
	endpoint := getEnv("MINIO_ENDPOINT", "")
	if endpoint == "" {
		baseDir := getEnv("STORAGE_DIR", filepath.Join("data", "objects"))
		baseURL := getEnv("STORAGE_BASE_URL", "http://localhost:"+getEnv("PORT", "3001")+"/files")
		return storage.NewDiskStore(baseDir, baseURL), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return storage.NewMinioStore(ctx, storage.MinioConfig{
		Endpoint:  endpoint,
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", "lyz"),
		UseSSL:    getEnvBool("MINIO_USE_SSL", false),
	})
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("invalid %s %q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("invalid %s %q, using %t", key, raw, fallback)
		return fallback
	}
	return value
}
