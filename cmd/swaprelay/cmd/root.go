package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-swaprelay/internal/common"
	"github.com/lugondev/go-swaprelay/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swaprelay",
	Short: "Swap relay CLI - swap tokens through a token-swap pool",
	Long: `swaprelay sends token swaps through the relay program, which validates
the accounts of the swap and forwards it to the token-swap program.

It provides commands for:
- Encoding swap payloads
- Validating, simulating and sending swaps`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.swaprelay.yaml)")
	rootCmd.PersistentFlags().String("rpc", "", "Solana RPC endpoint (overrides solana.rpc)")
	rootCmd.PersistentFlags().String("network", "", "Solana network (mainnet, devnet, testnet, localnet)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func initConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("rpc"); v != "" {
		loaded.Solana.RPC = v
	}
	if v, _ := flags.GetString("network"); v != "" {
		loaded.Solana.Network = v
		if !flags.Changed("rpc") {
			loaded.Solana.RPC = ""
		}
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		loaded.Log.Level = v
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return nil
}
