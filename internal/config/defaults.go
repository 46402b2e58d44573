package config

// Default endpoints. The public RPCs need no API key.
const (
	DefaultBaseRPCURL    = "https://mainnet.base.org"
	DefaultSolanaRPCURL  = "https://api.mainnet-beta.solana.com"
	DefaultChainbaseURL  = "https://api.chainbase.online"
	DefaultBlockscoutURL = "https://base.blockscout.com"
	DefaultZeroExURL     = "https://api.0x.org"
)

// BaseChainID is the EVM chain id of Base mainnet.
const BaseChainID = 8453

// DefaultBurnAddress receives tokens sent to be burned.
const DefaultBurnAddress = "0x000000000000000000000000000000000000dEaD"

// DefaultDustThreshold is the dust cut-off in display units.
const DefaultDustThreshold = 100.0

// DefaultFeeRecipient and DefaultFeePercentage are attached to every swap
// quote request. The percentage is a fraction of the bought amount.
const (
	DefaultFeeRecipient  = "0x9c84ed136b859b11f10f92133de0457a3e2c497f"
	DefaultFeePercentage = 0.01
)

// DefaultPriorityTokens are read directly from chain when the indexer misses them.
//
//nolint:gochecknoglobals // Configuration default, same pattern as the endpoint constants
var DefaultPriorityTokens = []TokenConfig{
	{Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
	{Symbol: "USDbC", Address: "0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA", Decimals: 6},
	{Symbol: "DAI", Address: "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb", Decimals: 18},
	{Symbol: "WETH", Address: "0x4200000000000000000000000000000000000006", Decimals: 18},
}

// Defaults returns the default configuration.
func Defaults() *Config {
	tokens := make([]TokenConfig, len(DefaultPriorityTokens))
	copy(tokens, DefaultPriorityTokens)

	return &Config{
		Version: 1,
		Home:    "~/.janitor",
		Networks: NetworksConfig{
			Base: BaseNetworkConfig{
				RPC:            DefaultBaseRPCURL,
				ChainID:        BaseChainID,
				ScanProvider:   "chainbase",
				Chainbase:      IndexerConfig{URL: DefaultChainbaseURL},
				Blockscout:     IndexerConfig{URL: DefaultBlockscoutURL},
				BurnAddress:    DefaultBurnAddress,
				PriorityTokens: tokens,
			},
			Solana: SolanaNetworkConfig{
				RPC:        DefaultSolanaRPCURL,
				Commitment: "confirmed",
			},
		},
		Scan: ScanConfig{
			DustThreshold: DefaultDustThreshold,
			PageSize:      100,
			MaxPages:      5,
		},
		Swap: SwapConfig{
			URL:           DefaultZeroExURL,
			BuyToken:      "ETH",
			FeeRecipient:  DefaultFeeRecipient,
			FeePercentage: DefaultFeePercentage,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
		},
		Logging: LoggingConfig{
			Level:  "error",
			Format: "console",
			File:   "~/.janitor/janitor.log",
		},
	}
}
