package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/config"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify janitor configuration settings.`,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.janitor/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  janitor config init
  janitor config init --force`,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: defaults, then the config file, then
environment overrides. API keys are masked.`,
	Example: `  janitor config show
  janitor config show -o json`,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree.`,
	Example: `  janitor config get networks.base.rpc
  janitor config get scan.dust_threshold`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its path.

The path uses dot notation to navigate the configuration tree. The updated
configuration is validated before the file is written.`,
	Example: `  janitor config set networks.base.rpc https://base.llamarpc.com
  janitor config set scan.dust_threshold 0.5
  janitor config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.GroupID = "config"
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

// configField reads and writes one dot-path setting.
type configField struct {
	get    func(c *config.Config) string
	set    func(c *config.Config, v string) error
	secret bool
}

func stringField(ptr func(c *config.Config) *string) configField {
	return configField{
		get: func(c *config.Config) string { return *ptr(c) },
		set: func(c *config.Config, v string) error { *ptr(c) = v; return nil },
	}
}

func secretField(ptr func(c *config.Config) *string) configField {
	f := stringField(ptr)
	f.secret = true
	return f
}

func intField(ptr func(c *config.Config) *int) configField {
	return configField{
		get: func(c *config.Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return janitorerr.WithDetails(janitorerr.ErrConfigInvalid, map[string]string{"value": v, "expected": "integer"})
			}
			*ptr(c) = n
			return nil
		},
	}
}

func floatField(ptr func(c *config.Config) *float64) configField {
	return configField{
		get: func(c *config.Config) string { return strconv.FormatFloat(*ptr(c), 'f', -1, 64) },
		set: func(c *config.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return janitorerr.WithDetails(janitorerr.ErrConfigInvalid, map[string]string{"value": v, "expected": "number"})
			}
			*ptr(c) = f
			return nil
		},
	}
}

func boolField(ptr func(c *config.Config) *bool) configField {
	return configField{
		get: func(c *config.Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return janitorerr.WithDetails(janitorerr.ErrConfigInvalid, map[string]string{"value": v, "expected": "true or false"})
			}
			*ptr(c) = b
			return nil
		},
	}
}

// configFields lists every settable path.
//
//nolint:gochecknoglobals // static lookup table
var configFields = map[string]configField{
	"home":                          stringField(func(c *config.Config) *string { return &c.Home }),
	"networks.base.rpc":             stringField(func(c *config.Config) *string { return &c.Networks.Base.RPC }),
	"networks.base.wallet_url":      stringField(func(c *config.Config) *string { return &c.Networks.Base.WalletURL }),
	"networks.base.scan_provider":   stringField(func(c *config.Config) *string { return &c.Networks.Base.ScanProvider }),
	"networks.base.burn_address":    stringField(func(c *config.Config) *string { return &c.Networks.Base.BurnAddress }),
	"networks.base.chainbase.url":   stringField(func(c *config.Config) *string { return &c.Networks.Base.Chainbase.URL }),
	"networks.base.blockscout.url":  stringField(func(c *config.Config) *string { return &c.Networks.Base.Blockscout.URL }),
	"networks.solana.rpc":           stringField(func(c *config.Config) *string { return &c.Networks.Solana.RPC }),
	"networks.solana.commitment":    stringField(func(c *config.Config) *string { return &c.Networks.Solana.Commitment }),
	"swap.url":                      stringField(func(c *config.Config) *string { return &c.Swap.URL }),
	"swap.buy_token":                stringField(func(c *config.Config) *string { return &c.Swap.BuyToken }),
	"swap.fee_recipient":            stringField(func(c *config.Config) *string { return &c.Swap.FeeRecipient }),
	"server.listen":                 stringField(func(c *config.Config) *string { return &c.Server.Listen }),
	"output.default_format":         stringField(func(c *config.Config) *string { return &c.Output.DefaultFormat }),
	"logging.level":                 stringField(func(c *config.Config) *string { return &c.Logging.Level }),
	"logging.format":                stringField(func(c *config.Config) *string { return &c.Logging.Format }),
	"logging.file":                  stringField(func(c *config.Config) *string { return &c.Logging.File }),
	"networks.base.chainbase.api_key": secretField(func(c *config.Config) *string {
		return &c.Networks.Base.Chainbase.APIKey
	}),
	"networks.base.blockscout.api_key": secretField(func(c *config.Config) *string {
		return &c.Networks.Base.Blockscout.APIKey
	}),
	"swap.api_key":        secretField(func(c *config.Config) *string { return &c.Swap.APIKey }),
	"scan.page_size":      intField(func(c *config.Config) *int { return &c.Scan.PageSize }),
	"scan.max_pages":      intField(func(c *config.Config) *int { return &c.Scan.MaxPages }),
	"scan.dust_threshold": floatField(func(c *config.Config) *float64 { return &c.Scan.DustThreshold }),
	"swap.fee_percentage": floatField(func(c *config.Config) *float64 { return &c.Swap.FeePercentage }),
	"output.verbose":      boolField(func(c *config.Config) *bool { return &c.Output.Verbose }),
	"networks.base.chain_id": {
		get: func(c *config.Config) string { return strconv.FormatInt(c.Networks.Base.ChainID, 10) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return janitorerr.WithDetails(janitorerr.ErrConfigInvalid, map[string]string{"value": v, "expected": "integer"})
			}
			c.Networks.Base.ChainID = n
			return nil
		},
	},
}

func lookupField(path string) (configField, error) {
	f, ok := configFields[path]
	if !ok {
		return configField{}, janitorerr.WithSuggestion(
			janitorerr.WithDetails(janitorerr.ErrNotFound, map[string]string{"path": path}),
			fmt.Sprintf("configuration path '%s' not found; see janitor config show", path),
		)
	}
	return f, nil
}

// getConfigValue retrieves a value from the config using dot notation.
func getConfigValue(c *config.Config, path string) (string, error) {
	f, err := lookupField(path)
	if err != nil {
		return "", err
	}
	return f.get(c), nil
}

// setConfigValue sets a value in the config using dot notation.
func setConfigValue(c *config.Config, path, value string) error {
	f, err := lookupField(path)
	if err != nil {
		return err
	}
	return f.set(c, value)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !configForce {
		return janitorerr.WithSuggestion(
			janitorerr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - networks.base.rpc / networks.solana.rpc: your RPC endpoints")
	outln(w, "  - networks.base.chainbase.api_key: Chainbase key for Base scans and imports")
	outln(w, "  - swap.api_key: 0x key for sweep")
	outln(w, "  - scan.dust_threshold: balances below this are dust")

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	values := configValues(cfg)

	if formatter != nil && formatter.IsJSON() {
		return writeJSON(w, values)
	}
	return displayConfigText(w, values)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := getConfigValue(cfg, args[0])
	if err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	value := args[1]

	if _, err := lookupField(path); err != nil {
		return err
	}

	// Load current config from file so environment overrides are not persisted
	configPath := config.Path(cfg.Home)
	currentCfg, err := config.Load(configPath)
	if err != nil {
		currentCfg = config.Defaults()
		currentCfg.Home = cfg.Home
	}

	if err = setConfigValue(currentCfg, path, value); err != nil {
		return err
	}
	if err = currentCfg.Validate(); err != nil {
		return err
	}
	if err = config.Save(currentCfg, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if configFields[path].secret {
		value = maskSecret(value)
	}
	out(cmd.OutOrStdout(), "Set %s = %s\n", path, value)
	return nil
}

// configValues flattens c into path/value pairs with secrets masked.
func configValues(c *config.Config) map[string]string {
	values := make(map[string]string, len(configFields))
	for path, f := range configFields {
		v := f.get(c)
		if f.secret {
			v = maskSecret(v)
		}
		values[path] = v
	}
	return values
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not configured)"
	case len(s) >= 4:
		return s[:4] + "..."
	default:
		return "***..."
	}
}

// displayConfigText shows the config in text format.
func displayConfigText(w io.Writer, values map[string]string) error {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	outln(w, "Configuration:")
	outln(w)
	for _, p := range paths {
		v := values[p]
		if v == "" {
			v = "(not set)"
		}
		out(w, "  %s: %s\n", p, v)
	}
	return nil
}
