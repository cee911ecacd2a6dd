package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lugondev/go-swaprelay/internal/relay"
	"github.com/lugondev/go-swaprelay/internal/tokenswap"
)

// encodedSwap is the output of the encode command.
type encodedSwap struct {
	AmountIn         uint64 `yaml:"amount_in"`
	MinimumAmountOut uint64 `yaml:"minimum_amount_out"`
	SwapHex          string `yaml:"swap_hex"`
	SwapBase58       string `yaml:"swap_base58"`
	RelayHex         string `yaml:"relay_hex"`
	RelayBase58      string `yaml:"relay_base58"`
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a swap payload",
	Long: `Encode the 17-byte token-swap payload [tag=1][amount_in u64 LE][minimum_amount_out u64 LE]
and the swap_tokens instruction data sent to the relay program.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		amountIn, _ := cmd.Flags().GetUint64("amount-in")
		minOut, _ := cmd.Flags().GetUint64("min-out")
		output, _ := cmd.Flags().GetString("output")

		swapData, err := tokenswap.SwapInstructionArgs{AmountIn: amountIn, MinimumAmountOut: minOut}.Marshal()
		if err != nil {
			return err
		}
		relayData, err := relay.EncodeSwapTokens(relay.SwapRequest{AmountIn: amountIn, MinimumAmountOut: minOut})
		if err != nil {
			return err
		}

		enc := encodedSwap{
			AmountIn:         amountIn,
			MinimumAmountOut: minOut,
			SwapHex:          hex.EncodeToString(swapData),
			SwapBase58:       base58.Encode(swapData),
			RelayHex:         hex.EncodeToString(relayData),
			RelayBase58:      base58.Encode(relayData),
		}

		out := cmd.OutOrStdout()
		switch output {
		case "yaml":
			data, err := yaml.Marshal(enc)
			if err != nil {
				return fmt.Errorf("failed to marshal output: %w", err)
			}
			_, err = out.Write(data)
			return err
		case "text", "":
			fmt.Fprintf(out, "Swap payload (%d bytes)\n", len(swapData))
			fmt.Fprintf(out, "  Hex:    %s\n", enc.SwapHex)
			fmt.Fprintf(out, "  Base58: %s\n", enc.SwapBase58)
			fmt.Fprintf(out, "Relay payload (%d bytes)\n", len(relayData))
			fmt.Fprintf(out, "  Hex:    %s\n", enc.RelayHex)
			fmt.Fprintf(out, "  Base58: %s\n", enc.RelayBase58)
			return nil
		default:
			return fmt.Errorf("unknown output format %q", output)
		}
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().Uint64("amount-in", 0, "amount of the input token to sell")
	encodeCmd.Flags().Uint64("min-out", 0, "minimum amount of the output token to accept")
	encodeCmd.Flags().StringP("output", "o", "text", "output format (text, yaml)")
	_ = encodeCmd.MarkFlagRequired("amount-in")
}
