package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type GoogleConfig struct {
	// AccessToken is a delegated-admin bearer token covering the directory,
	// document store and mail scopes. Token acquisition and refresh are
	// handled outside the bot.
	AccessToken         string
	DelegatedAdminEmail string
}

// IsConfigured returns true if all required Google API configuration is present
func (c GoogleConfig) IsConfigured() bool {
	return c.AccessToken != "" && c.DelegatedAdminEmail != ""
}

type GeminiConfig struct {
	APIKey string
	Model  string // Optional, client falls back to its default model
}

// IsConfigured returns true if all required Gemini configuration is present
func (c GeminiConfig) IsConfigured() bool {
	return c.APIKey != ""
}

type DocstoreConfig struct {
	ProjectID  string
	DatabaseID string
}

// IsConfigured returns true if all required document store configuration is present
func (c DocstoreConfig) IsConfigured() bool {
	return c.ProjectID != "" && c.DatabaseID != ""
}

type AppConfig struct {
	// Core configuration (always required)
	Domain string // Workspace domain used to complete partial emails
	// SupportEmail receives manager-request notifications and doubles as the
	// super-admin address that bypasses the authorization gate.
	SupportEmail       string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	UseStrictConfig    bool // If true, error when any integration is not fully configured

	// Integration configurations (grouped)
	GoogleConfig   GoogleConfig
	GeminiConfig   GeminiConfig
	DocstoreConfig DocstoreConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	domain, err := getEnvRequired("WORKSPACE_DOMAIN")
	if err != nil {
		return nil, err
	}

	supportEmail, err := getEnvRequired("SUPPORT_EMAIL")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		// Core configuration
		Domain:             domain,
		SupportEmail:       supportEmail,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		// Google Workspace APIs (required - the bot cannot operate without them)
		GoogleConfig: GoogleConfig{
			AccessToken:         os.Getenv("GOOGLE_ACCESS_TOKEN"),
			DelegatedAdminEmail: os.Getenv("DELEGATED_ADMIN_EMAIL"),
		},

		// Gemini configuration (optional - bot degrades to slash commands only)
		GeminiConfig: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  os.Getenv("GEMINI_MODEL"),
		},

		// Document store configuration (optional - bot falls back to built-in defaults)
		DocstoreConfig: DocstoreConfig{
			ProjectID:  os.Getenv("DOCSTORE_PROJECT_ID"),
			DatabaseID: getEnvWithDefault("DOCSTORE_DATABASE_ID", "(default)"),
		},
	}

	// Directory access is the one unrecoverable dependency - there is no
	// degraded mode for group mutations.
	if !config.GoogleConfig.IsConfigured() {
		return nil, fmt.Errorf("google API access is not configured (GOOGLE_ACCESS_TOKEN, DELEGATED_ADMIN_EMAIL)")
	}

	if config.GeminiConfig.IsConfigured() {
		log.Printf("✅ Gemini integration configured")
	} else {
		log.Printf("⚠️ Gemini integration not configured - free-text understanding will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("gemini integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.DocstoreConfig.IsConfigured() {
		log.Printf("✅ Document store configured")
	} else {
		log.Printf("⚠️ Document store not configured - using built-in prompt and empty FAQ table")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("document store is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
