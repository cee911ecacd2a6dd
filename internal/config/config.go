package config

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Solana SolanaConfig `mapstructure:"solana"`
	Log    LogConfig    `mapstructure:"log"`
	Relay  RelayConfig  `mapstructure:"relay"`
	Pool   PoolConfig   `mapstructure:"pool"`
}

// SolanaConfig holds Solana-specific configuration
type SolanaConfig struct {
	RPC        string `mapstructure:"rpc"`
	Network    string `mapstructure:"network"`
	Timeout    int    `mapstructure:"timeout"` // in seconds
	Commitment string `mapstructure:"commitment"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// RelayConfig selects the relay program and the programs it may call.
type RelayConfig struct {
	ProgramID                 string `mapstructure:"program_id"`
	SwapProgramID             string `mapstructure:"swap_program_id"`
	TokenProgramID            string `mapstructure:"token_program_id"`
	RequireAssociatedAccounts bool   `mapstructure:"require_associated_accounts"`
}

// PoolConfig describes one token-swap pool by its account addresses.
type PoolConfig struct {
	State      string `mapstructure:"state"`
	Authority  string `mapstructure:"authority"`
	LpMint     string `mapstructure:"lp_mint"`
	FeeAccount string `mapstructure:"fee_account"`
	MintA      string `mapstructure:"mint_a"`
	MintB      string `mapstructure:"mint_b"`
	VaultA     string `mapstructure:"vault_a"`
	VaultB     string `mapstructure:"vault_b"`
}

// Pool is a PoolConfig with every address parsed.
type Pool struct {
	State      solana.PublicKey
	Authority  solana.PublicKey
	LpMint     solana.PublicKey
	FeeAccount solana.PublicKey
	MintA      solana.PublicKey
	MintB      solana.PublicKey
	VaultA     solana.PublicKey
	VaultB     solana.PublicKey
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Solana: SolanaConfig{
			RPC:        "https://api.devnet.solana.com",
			Network:    "devnet",
			Timeout:    30,
			Commitment: "confirmed",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Relay: RelayConfig{
			ProgramID:                 "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS",
			SwapProgramID:             "SwapsVeCiPHMUAtzQWZw7RjsKjgCjhwU55QGu4U1Szw",
			TokenProgramID:            "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
			RequireAssociatedAccounts: true,
		},
	}
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".swaprelay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	// Environment variables, e.g. SWAPRELAY_SOLANA_RPC
	v.SetEnvPrefix("SWAPRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := checkAddressTypes(v); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// addressKeys are the keys holding base58 account addresses.
var addressKeys = []string{
	"relay.program_id", "relay.swap_program_id", "relay.token_program_id",
	"pool.state", "pool.authority", "pool.lp_mint", "pool.fee_account",
	"pool.mint_a", "pool.mint_b", "pool.vault_a", "pool.vault_b",
}

// checkAddressTypes rejects addresses the config file decoded as something
// other than a string. An unquoted address made only of digits, such as the
// system program id, is read by YAML as a number and loses its value.
func checkAddressTypes(v *viper.Viper) error {
	for _, k := range addressKeys {
		switch raw := v.Get(k).(type) {
		case nil, string:
		default:
			return fmt.Errorf("%s must be a string, got %T %v; quote the address in the config file", k, raw, raw)
		}
	}
	return nil
}

// bindEnv registers every key so AutomaticEnv applies to Unmarshal even when
// the key appears in no config file.
func bindEnv(v *viper.Viper) {
	keys := []string{
		"solana.rpc", "solana.network", "solana.timeout", "solana.commitment",
		"log.level", "log.format",
		"relay.require_associated_accounts",
	}
	for _, k := range append(keys, addressKeys...) {
		_ = v.BindEnv(k)
	}
}

// Validate checks the values that every command depends on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Solana.Timeout <= 0 {
		return fmt.Errorf("solana.timeout must be positive, got %d", c.Solana.Timeout)
	}

	for name, value := range map[string]string{
		"relay.program_id":       c.Relay.ProgramID,
		"relay.swap_program_id":  c.Relay.SwapProgramID,
		"relay.token_program_id": c.Relay.TokenProgramID,
	} {
		if _, err := solana.PublicKeyFromBase58(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}
	return nil
}

// ProgramIDs returns the parsed relay, swap and token program ids.
func (r *RelayConfig) ProgramIDs() (relay, swap, token solana.PublicKey) {
	return solana.MustPublicKeyFromBase58(r.ProgramID),
		solana.MustPublicKeyFromBase58(r.SwapProgramID),
		solana.MustPublicKeyFromBase58(r.TokenProgramID)
}

// Resolve parses every pool address. All of them are required.
func (p *PoolConfig) Resolve() (*Pool, error) {
	var pool Pool
	fields := []struct {
		name  string
		value string
		dst   *solana.PublicKey
	}{
		{"pool.state", p.State, &pool.State},
		{"pool.authority", p.Authority, &pool.Authority},
		{"pool.lp_mint", p.LpMint, &pool.LpMint},
		{"pool.fee_account", p.FeeAccount, &pool.FeeAccount},
		{"pool.mint_a", p.MintA, &pool.MintA},
		{"pool.mint_b", p.MintB, &pool.MintB},
		{"pool.vault_a", p.VaultA, &pool.VaultA},
		{"pool.vault_b", p.VaultB, &pool.VaultB},
	}
	for _, f := range fields {
		if f.value == "" {
			return nil, fmt.Errorf("%s is required", f.name)
		}
		key, err := solana.PublicKeyFromBase58(f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = key
	}
	if pool.MintA.Equals(pool.MintB) {
		return nil, fmt.Errorf("pool.mint_a and pool.mint_b must differ")
	}
	return &pool, nil
}

// Direction returns the pool accounts for a swap that sells inputMint:
// the vault receiving the input, the vault paying out and the output mint.
func (p *Pool) Direction(inputMint solana.PublicKey) (vaultIn, vaultOut, outputMint solana.PublicKey, err error) {
	switch {
	case inputMint.Equals(p.MintA):
		return p.VaultA, p.VaultB, p.MintB, nil
	case inputMint.Equals(p.MintB):
		return p.VaultB, p.VaultA, p.MintA, nil
	default:
		return solana.PublicKey{}, solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("mint %s is not traded by this pool", inputMint)
	}
}

// GetRPCEndpoint returns the RPC endpoint for the configured network
func (c *SolanaConfig) GetRPCEndpoint() string {
	if c.RPC != "" {
		return c.RPC
	}

	switch c.Network {
	case "mainnet", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "localnet", "localhost":
		return "http://localhost:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}
