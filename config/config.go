package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup. Session-scoped
// state (signers, balances) never lives here.
type Config struct {
	Port string

	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string

	RPCURL            string
	HorizonURL        string
	NetworkPassphrase string
	XLMTokenAddress   string

	// ContractID is a pre-deployed equity-token contract, if any.
	ContractID string

	// DeployerSeed signs server-side flows (deploys, demo trading).
	DeployerSeed string

	// DeployCommand is the external CLI invoked by /api/deploy-contract.
	DeployCommand string
}

func Load() (Config, error) {
	_ = godotenv.Load("dev.env")

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            os.Getenv("DB_HOST"),
		DBName:            os.Getenv("DB_NAME"),
		RPCURL:            os.Getenv("RPC_URL"),
		HorizonURL:        os.Getenv("HORIZON_URL"),
		NetworkPassphrase: os.Getenv("NETWORK_PASSPHRASE"),
		XLMTokenAddress:   os.Getenv("XLM_TOKEN_ADDRESS"),
		ContractID:        os.Getenv("CONTRACT_ID"),
		DeployerSeed:      os.Getenv("DEPLOYER_SEED"),
		DeployCommand:     getEnv("DEPLOY_COMMAND", "./scripts/deploy.sh"),
	}

	for name, value := range map[string]string{
		"RPC_URL":            cfg.RPCURL,
		"HORIZON_URL":        cfg.HorizonURL,
		"NETWORK_PASSPHRASE": cfg.NetworkPassphrase,
		"XLM_TOKEN_ADDRESS":  cfg.XLMTokenAddress,
		"DB_HOST":            cfg.DBHost,
		"DB_NAME":            cfg.DBName,
	} {
		if value == "" {
			return Config{}, fmt.Errorf("missing required env var %s", name)
		}
	}
	return cfg, nil
}

// DatabaseURL composes the Postgres connection string.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:5432/%s", c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
