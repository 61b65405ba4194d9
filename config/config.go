// Package config loads client settings from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dwdwow/pacifica-go/constants"
)

// Config holds client settings read from the environment.
type Config struct {
	PrivateKey  string
	MainAccount string
	BaseURL     string
	Testnet     bool
}

// FromEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
//
//	PACIFICA_PRIVATE_KEY   base58 ed25519 private key
//	PACIFICA_MAIN_ACCOUNT  main account address for agent keys
//	PACIFICA_API_URL       explicit API URL override
//	PACIFICA_TESTNET       "true" to target testnet
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		PrivateKey:  os.Getenv("PACIFICA_PRIVATE_KEY"),
		MainAccount: os.Getenv("PACIFICA_MAIN_ACCOUNT"),
		BaseURL:     os.Getenv("PACIFICA_API_URL"),
	}
	if v, err := strconv.ParseBool(os.Getenv("PACIFICA_TESTNET")); err == nil {
		cfg.Testnet = v
	}
	if cfg.BaseURL == "" {
		if cfg.Testnet {
			cfg.BaseURL = constants.TestnetAPIURL
		} else {
			cfg.BaseURL = constants.MainnetAPIURL
		}
	}
	return cfg
}
