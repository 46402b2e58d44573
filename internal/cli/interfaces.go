package cli

import (
	"github.com/shopspring/decimal"

	"github.com/mrz1836/janitor/internal/config"
	"github.com/mrz1836/janitor/internal/output"
)

// Compile-time interface checks.
var (
	_ ConfigProvider = (*config.Config)(nil)
	_ LogWriter      = (*config.Logger)(nil)
	_ FormatProvider = (*output.Formatter)(nil)
)

// ConfigProvider provides read access to configuration values.
// This interface enables mocking configuration in tests.
type ConfigProvider interface {
	// GetHome returns the janitor home directory path.
	GetHome() string

	// GetBaseRPC returns the Base JSON-RPC URL.
	GetBaseRPC() string

	// GetBaseChainID returns the EVM chain id of the Base network.
	GetBaseChainID() int64

	// GetWalletURL returns the external wallet endpoint, if any.
	GetWalletURL() string

	// GetSolanaRPC returns the Solana JSON-RPC URL.
	GetSolanaRPC() string

	// GetScanProvider returns the primary Base token indexer.
	GetScanProvider() string

	// GetDustThreshold returns the dust threshold in display units.
	GetDustThreshold() decimal.Decimal

	// GetLoggingLevel returns the configured logging level.
	GetLoggingLevel() string

	// GetOutputFormat returns the default output format.
	GetOutputFormat() string

	// IsVerbose returns true if verbose output is enabled.
	IsVerbose() bool
}

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)

	// Close closes the logger and releases resources.
	Close() error
}

// FormatProvider provides output format information.
// This interface enables mocking output formatting in tests.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format
}
