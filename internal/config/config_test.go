package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

const poolYAML = `
solana:
  network: mainnet
  rpc: ""
log:
  level: debug
pool:
  state: SwapsVeCiPHMUAtzQWZw7RjsKjgCjhwU55QGu4U1Szw
  authority: "11111111111111111111111111111111"
  lp_mint: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
  fee_account: ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL
  mint_a: So11111111111111111111111111111111111111112
  mint_b: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
  vault_a: SysvarRent111111111111111111111111111111111
  vault_b: SysvarC1ock11111111111111111111111111111111
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swaprelay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("SWAPRELAY_SOLANA_TIMEOUT", "5")

	cfg, err := Load(writeConfig(t, poolYAML))
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format, "format keeps its default")
	require.Equal(t, 5, cfg.Solana.Timeout, "timeout comes from the environment")
	require.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Solana.GetRPCEndpoint())
	require.True(t, cfg.Relay.RequireAssociatedAccounts)

	pool, err := cfg.Pool.Resolve()
	require.NoError(t, err)
	require.Equal(t, solana.SystemProgramID, pool.Authority)

	in, out, outMint, err := pool.Direction(pool.MintB)
	require.NoError(t, err)
	require.Equal(t, pool.VaultB, in)
	require.Equal(t, pool.VaultA, out)
	require.Equal(t, pool.MintA, outMint)

	_, _, _, err = pool.Direction(solana.SystemProgramID)
	require.Error(t, err, "the pool does not trade this mint")
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"log level", "log:\n  level: loud\n"},
		{"log format", "log:\n  format: xml\n"},
		{"timeout", "solana:\n  timeout: 0\n"},
		{"program id", "relay:\n  program_id: not-a-key\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadRejectsUnquotedDigitAddress(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"pool authority", strings.Replace(poolYAML, `"11111111111111111111111111111111"`, "11111111111111111111111111111111", 1), "pool.authority"},
		{"swap program", "relay:\n  swap_program_id: 11111111\n", "relay.swap_program_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.key)
			require.Contains(t, err.Error(), "quote the address")
		})
	}
}

func TestResolveRequiresEveryAddress(t *testing.T) {
	p := PoolConfig{State: "SwapsVeCiPHMUAtzQWZw7RjsKjgCjhwU55QGu4U1Szw"}
	_, err := p.Resolve()
	require.Error(t, err)
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	relay, swap, token := cfg.Relay.ProgramIDs()
	require.False(t, relay.IsZero())
	require.False(t, swap.IsZero())
	require.False(t, token.IsZero())
}
