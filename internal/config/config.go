// Package config provides configuration management for Janitor.
package config

import (
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Networks NetworksConfig `yaml:"networks"`
	Scan     ScanConfig     `yaml:"scan"`
	Swap     SwapConfig     `yaml:"swap"`
	Server   ServerConfig   `yaml:"server"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NetworksConfig defines per-chain network settings.
type NetworksConfig struct {
	Base   BaseNetworkConfig   `yaml:"base"`
	Solana SolanaNetworkConfig `yaml:"solana"`
}

// BaseNetworkConfig defines Base (EVM) network settings.
type BaseNetworkConfig struct {
	RPC     string `yaml:"rpc" validate:"required,url"`
	ChainID int64  `yaml:"chain_id" validate:"gt=0"`

	// WalletURL is an optional EIP-1193 JSON-RPC endpoint of an external
	// wallet. When set, transactions are sent through it instead of the
	// local keystore.
	WalletURL string `yaml:"wallet_url,omitempty" validate:"omitempty,url"`

	// ScanProvider selects the primary token indexer.
	ScanProvider string `yaml:"scan_provider" validate:"oneof=chainbase blockscout"`

	Chainbase      IndexerConfig `yaml:"chainbase"`
	Blockscout     IndexerConfig `yaml:"blockscout"`
	BurnAddress    string        `yaml:"burn_address" validate:"required,eth_addr"`
	PriorityTokens []TokenConfig `yaml:"priority_tokens" validate:"dive"`
}

// IndexerConfig holds the endpoint and credentials for an indexer API.
type IndexerConfig struct {
	URL    string `yaml:"url" validate:"required,url"`
	APIKey string `yaml:"api_key,omitempty"`
}

// TokenConfig defines an ERC-20 token that is always checked on-chain.
type TokenConfig struct {
	Symbol   string `yaml:"symbol" validate:"required"`
	Address  string `yaml:"address" validate:"required,eth_addr"`
	Decimals uint8  `yaml:"decimals" validate:"lte=36"`
}

// SolanaNetworkConfig defines Solana network settings.
type SolanaNetworkConfig struct {
	RPC        string `yaml:"rpc" validate:"required,url"`
	Commitment string `yaml:"commitment" validate:"oneof=processed confirmed finalized"`
}

// ScanConfig defines scanning and classification settings.
type ScanConfig struct {
	// DustThreshold is expressed in display units of the token.
	DustThreshold float64 `yaml:"dust_threshold" validate:"gt=0"`
	PageSize      int     `yaml:"page_size" validate:"gte=1,lte=100"`
	MaxPages      int     `yaml:"max_pages" validate:"gte=1,lte=50"`
}

// SwapConfig defines 0x swap quote settings used by the sweep action.
type SwapConfig struct {
	URL           string  `yaml:"url" validate:"required,url"`
	APIKey        string  `yaml:"api_key,omitempty"`
	BuyToken      string  `yaml:"buy_token" validate:"required"`
	FeeRecipient  string  `yaml:"fee_recipient" validate:"omitempty,eth_addr"`
	FeePercentage float64 `yaml:"fee_percentage" validate:"gte=0,lt=1"`
}

// ServerConfig defines the read-only HTTP API settings.
type ServerConfig struct {
	Listen string `yaml:"listen" validate:"required,hostname_port"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" validate:"oneof=auto text json"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=off none error warn info debug"`
	Format string `yaml:"format" validate:"oneof=console json"`
	File   string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetHome returns the janitor home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetBaseRPC returns the Base JSON-RPC URL.
func (c *Config) GetBaseRPC() string {
	return c.Networks.Base.RPC
}

// GetBaseChainID returns the configured EVM chain id.
func (c *Config) GetBaseChainID() int64 {
	return c.Networks.Base.ChainID
}

// GetWalletURL returns the external wallet endpoint, or "" when the keystore is used.
func (c *Config) GetWalletURL() string {
	return c.Networks.Base.WalletURL
}

// GetSolanaRPC returns the Solana JSON-RPC URL.
func (c *Config) GetSolanaRPC() string {
	return c.Networks.Solana.RPC
}

// GetSolanaCommitment returns the Solana commitment level.
func (c *Config) GetSolanaCommitment() string {
	return c.Networks.Solana.Commitment
}

// GetScanProvider returns the primary token indexer for Base.
func (c *Config) GetScanProvider() string {
	return c.Networks.Base.ScanProvider
}

// GetPriorityTokens returns the tokens that are always checked on-chain.
func (c *Config) GetPriorityTokens() []TokenConfig {
	return c.Networks.Base.PriorityTokens
}

// GetDustThreshold returns the dust threshold in display units.
func (c *Config) GetDustThreshold() decimal.Decimal {
	return decimal.NewFromFloat(c.Scan.DustThreshold)
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default janitor home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".janitor"
	}
	return filepath.Join(home, ".janitor")
}
