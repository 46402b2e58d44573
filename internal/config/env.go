package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHome              = "JANITOR_HOME"
	EnvBaseRPC           = "JANITOR_BASE_RPC"
	EnvSolanaRPC         = "JANITOR_SOLANA_RPC"
	EnvWalletURL         = "JANITOR_WALLET_URL"
	EnvScanProvider      = "JANITOR_SCAN_PROVIDER"
	EnvChainbaseAPIKey   = "JANITOR_CHAINBASE_API_KEY"  // #nosec G101 -- env var name, not a credential
	EnvBlockscoutAPIKey  = "JANITOR_BLOCKSCOUT_API_KEY" // #nosec G101 -- env var name, not a credential
	EnvZeroExAPIKey      = "JANITOR_ZEROEX_API_KEY"     // #nosec G101 -- env var name, not a credential
	EnvDustThreshold     = "JANITOR_DUST_THRESHOLD"
	EnvOutputFormat      = "JANITOR_OUTPUT_FORMAT"
	EnvVerbose           = "JANITOR_VERBOSE"
	EnvLogLevel          = "JANITOR_LOG_LEVEL"
	EnvServerListen      = "JANITOR_LISTEN"
	EnvDotEnvFileName    = ".env"
	EnvLocalDotEnvSuffix = ".local"
)

// LoadDotEnv loads KEY=VALUE pairs from .env files into the process
// environment. Variables already set are never overridden, except by a
// ".env.local" file which takes precedence over ".env". Missing files are
// skipped.
func LoadDotEnv(dirs ...string) error {
	for _, dir := range dirs {
		base := filepath.Join(dir, EnvDotEnvFileName)
		if err := godotenv.Load(base); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := godotenv.Overload(base + EnvLocalDotEnvSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvBaseRPC); v != "" {
		cfg.Networks.Base.RPC = SanitizeURL(v)
	}

	if v := os.Getenv(EnvSolanaRPC); v != "" {
		cfg.Networks.Solana.RPC = SanitizeURL(v)
	}

	if v := os.Getenv(EnvWalletURL); v != "" {
		cfg.Networks.Base.WalletURL = SanitizeURL(v)
	}

	if v := os.Getenv(EnvScanProvider); v != "" {
		cfg.Networks.Base.ScanProvider = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvChainbaseAPIKey); v != "" {
		cfg.Networks.Base.Chainbase.APIKey = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvBlockscoutAPIKey); v != "" {
		cfg.Networks.Base.Blockscout.APIKey = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvZeroExAPIKey); v != "" {
		cfg.Swap.APIKey = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvDustThreshold); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			cfg.Scan.DustThreshold = f
		}
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvServerListen); v != "" {
		cfg.Server.Listen = strings.TrimSpace(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL strips whitespace, surrounding quotes and control characters
// that tend to sneak in when RPC URLs are copy-pasted.
func SanitizeURL(raw string) string {
	raw = strings.Trim(strings.TrimSpace(raw), `"'`)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}
