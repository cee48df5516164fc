package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/core-coin/go-core/v2/common"
	"github.com/joho/godotenv"

	"github.com/unisub/unisub/internal/network"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	// Blockchain configuration
	RPCURL             string
	WalletServiceURL   string
	NetworkID          uint64
	FactoryAddress     string
	StableTokenAddress string
	StableDecimals     int
	BalancePollSeconds int

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	NotifyEmail  string

	// Notification configuration
	TelegramBotToken string
	TelegramChatID   string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:        getEnvAsBool("DEVELOPMENT", false),
		PostgresUser:       getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:         getEnv("POSTGRES_DB", "unisub"),
		RPCURL:             getEnv("RPC_URL", ""),
		WalletServiceURL:   getEnv("WALLET_SERVICE_URL", "http://localhost:8546"),
		NetworkID:          getEnvAsUint64("NETWORK_ID", network.PreferredChainID),
		FactoryAddress:     getEnv("FACTORY_ADDRESS", ""),
		StableTokenAddress: getEnv("STABLE_TOKEN_ADDRESS", ""),
		StableDecimals:     getEnvAsInt("STABLE_DECIMALS", 6),
		BalancePollSeconds: getEnvAsInt("BALANCE_POLL_SECONDS", 30),
		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:     getEnv("TELEGRAM_CHAT_ID", ""),
		SMTPHost:           getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:           getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPSender:         getEnv("SMTP_SENDER", ""),
		NotifyEmail:        getEnv("NOTIFY_EMAIL", ""),

		APIPort: getEnvAsInt("API_PORT", 6532),
	}

	// Set default network ID before validation (required for address validation)
	common.DefaultNetworkID = common.NetworkID(cfg.NetworkID)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		// The first endpoint of the configured network serves as fallback.
		desc, ok := network.Descriptor(c.NetworkID)
		if !ok || len(desc.RPCEndpoints) == 0 {
			return fmt.Errorf("RPC_URL is required for network %d", c.NetworkID)
		}
		c.RPCURL = desc.RPCEndpoints[0]
	}

	if c.FactoryAddress == "" {
		return fmt.Errorf("FACTORY_ADDRESS is required")
	}
	if _, err := common.HexToAddress(c.FactoryAddress); err != nil {
		return fmt.Errorf("invalid FACTORY_ADDRESS format: %w", err)
	}

	if c.StableTokenAddress == "" {
		return fmt.Errorf("STABLE_TOKEN_ADDRESS is required")
	}
	if _, err := common.HexToAddress(c.StableTokenAddress); err != nil {
		return fmt.Errorf("invalid STABLE_TOKEN_ADDRESS format: %w", err)
	}

	if c.StableDecimals < 0 || c.StableDecimals > 30 {
		return fmt.Errorf("STABLE_DECIMALS out of range: %d", c.StableDecimals)
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsUint64(name string, defaultValue uint64) uint64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}
