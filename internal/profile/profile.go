package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where mvpforge stores its own data. When empty the
	// server falls back to the in-memory store.
	DSN string
	// Driver is the database driver (sqlite, postgres or memory)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your mvpforge instance.
	InstanceURL string

	// LLM configuration
	LLMAPIKey  string // MVPFORGE_LLM_API_KEY
	LLMBaseURL string // MVPFORGE_LLM_BASE_URL (default: https://api.openai.com/v1)
	LLMModel   string // MVPFORGE_LLM_MODEL (default: gpt-4o-mini)
	// LLMTimeoutSec bounds one model call; a hung upstream call otherwise
	// delays the HTTP response indefinitely.
	LLMTimeoutSec int // MVPFORGE_LLM_TIMEOUT_SEC (default: 60)

	// AccessBypass disables the customer access gate. Dev only.
	AccessBypass bool // MVPFORGE_ACCESS_BYPASS

	// BillingWebhookKey authenticates billing-system customer upserts.
	BillingWebhookKey string // MVPFORGE_BILLING_WEBHOOK_KEY
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled returns true if a language-model API key is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from MVPFORGE_* environment variables.
func (p *Profile) FromEnv() {
	p.LLMAPIKey = os.Getenv("MVPFORGE_LLM_API_KEY")
	p.LLMBaseURL = getEnvOrDefault("MVPFORGE_LLM_BASE_URL", "https://api.openai.com/v1")
	p.LLMModel = getEnvOrDefault("MVPFORGE_LLM_MODEL", "gpt-4o-mini")
	if v, err := strconv.Atoi(getEnvOrDefault("MVPFORGE_LLM_TIMEOUT_SEC", "60")); err == nil && v > 0 {
		p.LLMTimeoutSec = v
	} else {
		p.LLMTimeoutSec = 60
	}

	p.AccessBypass = os.Getenv("MVPFORGE_ACCESS_BYPASS") == "true"
	p.BillingWebhookKey = os.Getenv("MVPFORGE_BILLING_WEBHOOK_KEY")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	// No DSN means in-memory storage; the access bypass stays a separate,
	// explicit switch.
	if p.Driver == "" {
		if p.DSN == "" {
			p.Driver = "memory"
		} else {
			p.Driver = "sqlite"
		}
	}

	if p.Driver == "memory" {
		return nil
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/mvpforge"
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("mvpforge_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
