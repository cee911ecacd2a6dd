package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	relayerrors "github.com/lugondev/go-swaprelay/internal/errors"
	"github.com/lugondev/go-swaprelay/internal/metrics"
	"github.com/lugondev/go-swaprelay/internal/relay"
	"github.com/lugondev/go-swaprelay/internal/runtime"
	solanaclient "github.com/lugondev/go-swaprelay/internal/solana"
	"github.com/lugondev/go-swaprelay/internal/token"
	"github.com/lugondev/go-swaprelay/internal/tokenswap"
	logparser "github.com/lugondev/go-swaprelay/pkg/log"
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Swap tokens through the configured pool",
	Long: `Swap tokens through the relay program and the pool in the config file.

The accounts of the swap are fetched and validated locally first. The
transaction is then simulated, and sent unless --simulate is set. A rejection
by the relay program is reported as an account error; a rejection by the swap
program is reported with its raw error code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputMintStr, _ := cmd.Flags().GetString("input-mint")
		amountIn, _ := cmd.Flags().GetUint64("amount-in")
		minOut, _ := cmd.Flags().GetUint64("min-out")
		keypair, _ := cmd.Flags().GetString("keypair")
		simulate, _ := cmd.Flags().GetBool("simulate")

		if amountIn == 0 {
			return relayerrors.ZeroAmount()
		}
		inputMint, err := solana.PublicKeyFromBase58(inputMintStr)
		if err != nil {
			return fmt.Errorf("invalid input mint: %w", err)
		}
		wallet, err := solanaclient.LoadWallet(keypair)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Solana.Timeout)*time.Second)
		defer cancel()

		keys, err := swapKeys(wallet.PublicKey(), inputMint)
		if err != nil {
			return err
		}

		client := solanaclient.NewClient(cfg.Solana.GetRPCEndpoint(), cfg.Solana.Commitment)
		defer client.Close()

		m := metrics.NewLogMetrics(logger)
		defer func() { _ = m.Flush(context.Background()) }()

		start := time.Now()
		fetched, err := client.GetAccounts(ctx, keys[:])
		if err != nil {
			return err
		}
		_ = m.RecordHistogram(ctx, metrics.MetricAccountsFetchMilliseconds, float64(time.Since(start).Milliseconds()))

		state := make(map[solana.PublicKey]runtime.Account, len(keys))
		for i, acct := range fetched {
			if acct != nil {
				state[keys[i]] = *acct
			}
		}
		// Accounts missing on chain read as empty system accounts, as the runtime does.
		lookup := func(key solana.PublicKey) (runtime.Account, bool) {
			if acct, ok := state[key]; ok {
				return acct, true
			}
			return runtime.Account{Owner: solana.SystemProgramID}, true
		}

		relayID, swapID, _ := cfg.Relay.ProgramIDs()
		r := relay.NewBuilder().
			Logger(logger).
			Metrics(m).
			AllowSwapProgram(swapID).
			RequireAssociatedAccounts(cfg.Relay.RequireAssociatedAccounts).
			Build()
		if err := r.Validate(relay.NewRoleSet(keys, lookup)); err != nil {
			_ = m.IncrementCounter(ctx, metrics.MetricSwapsRejectedLocal, 1)
			return err
		}

		ix, err := relay.NewSwapTokensInstruction(relayID, keys, relay.SwapRequest{
			AmountIn:         amountIn,
			MinimumAmountOut: minOut,
		})
		if err != nil {
			return err
		}
		tx, err := client.NewTransaction(ctx, wallet, ix)
		if err != nil {
			return err
		}

		sim, err := client.SimulateTransaction(ctx, tx)
		if err != nil {
			return err
		}
		if sim.Err != nil {
			err := simulationError(relayID, swapID, sim)
			if relayerrors.IsLocal(err) {
				_ = m.IncrementCounter(ctx, metrics.MetricSwapsRejectedLocal, 1)
			} else {
				_ = m.IncrementCounter(ctx, metrics.MetricSwapsExternalFailed, 1)
			}
			return err
		}

		out := cmd.OutOrStdout()
		if simulate {
			fmt.Fprintf(out, "Simulation succeeded (%d compute units)\n", sim.Units)
			for _, line := range logparser.NewParser().ExtractProgramLogs(sim.Logs) {
				fmt.Fprintf(out, "  %s\n", line)
			}
			return nil
		}

		sig, err := sendSwap(ctx, client, m, tx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Swap sent\n")
		fmt.Fprintf(out, "  Signature: %s\n", sig)
		return nil
	},
}

type transactionSender interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// sendSwap submits tx and counts it as sent. The transaction is not confirmed,
// so it is never counted as a succeeded swap.
func sendSwap(ctx context.Context, sender transactionSender, m metrics.Metrics, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := sender.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	_ = m.IncrementCounter(ctx, metrics.MetricSwapsSent, 1)
	return sig, nil
}

// swapKeys resolves the account of every role for a swap that sells inputMint
// through the configured pool.
func swapKeys(caller, inputMint solana.PublicKey) ([relay.RoleCount]solana.PublicKey, error) {
	var keys [relay.RoleCount]solana.PublicKey

	pool, err := cfg.Pool.Resolve()
	if err != nil {
		return keys, err
	}
	vaultIn, vaultOut, outputMint, err := pool.Direction(inputMint)
	if err != nil {
		return keys, err
	}

	_, swapID, tokenID := cfg.Relay.ProgramIDs()
	callerIn, err := token.AssociatedAddress(caller, tokenID, inputMint)
	if err != nil {
		return keys, err
	}
	callerOut, err := token.AssociatedAddress(caller, tokenID, outputMint)
	if err != nil {
		return keys, err
	}

	keys[relay.RoleInputMint] = inputMint
	keys[relay.RoleOutputMint] = outputMint
	keys[relay.RoleCallerInputTokenAccount] = callerIn
	keys[relay.RoleCallerOutputTokenAccount] = callerOut
	keys[relay.RolePoolInputTokenAccount] = vaultIn
	keys[relay.RolePoolOutputTokenAccount] = vaultOut
	keys[relay.RolePoolLpMint] = pool.LpMint
	keys[relay.RolePoolAuthority] = pool.Authority
	keys[relay.RolePoolState] = pool.State
	keys[relay.RolePoolFeeAccount] = pool.FeeAccount
	keys[relay.RoleCallerAuthority] = caller
	keys[relay.RoleExternalSwapProgram] = swapID
	keys[relay.RoleExternalTokenProgram] = tokenID
	return keys, nil
}

// simulationError maps a failed simulation to a relay error. A failure raised
// by the relay program itself is a rejection of the swap's accounts; a failure
// in the swap program or below it is ExternalCallFailed with the failing
// program's custom code.
func simulationError(relayProgram, swapProgram solana.PublicKey, sim *solanaclient.SimulationResult) error {
	failure := logparser.NewParser().Failure(sim.Logs)
	if failure == nil {
		return relayerrors.Custom(fmt.Sprintf("simulation failed: %v", sim.Err))
	}

	programID, err := solana.PublicKeyFromBase58(failure.ProgramID)
	if err != nil {
		return relayerrors.DecodeFailed("failing program id", err)
	}

	if programID.Equals(relayProgram) && failure.StackHeight <= 1 {
		role := failure.Account
		if role == "" {
			role = "swap_tokens"
		}
		rejected := relayerrors.InvalidAccountRole(role, failure.Reason).
			WithDetails(map[string]any{"failed_program": failure.ProgramID})
		if failure.HasCode {
			rejected.Details["code"] = failure.Code
		}
		return rejected
	}

	var cause error = errors.New(failure.Reason)
	if failure.HasCode {
		cause = runtime.CustomError(programID, failure.Code)
	}
	failed := relayerrors.ExternalCallFailed(swapProgram, cause)
	if failure.HasCode && programID.Equals(swapProgram) {
		if name := tokenswap.ErrorName(failure.Code); name != "" {
			failed.Details["error_name"] = name
		}
	}
	failed.Details["failed_program"] = failure.ProgramID
	return failed
}

func init() {
	rootCmd.AddCommand(swapCmd)
	swapCmd.Flags().String("input-mint", "", "mint of the token to sell; must be one of the pool's mints")
	swapCmd.Flags().Uint64("amount-in", 0, "amount of the input token to sell")
	swapCmd.Flags().Uint64("min-out", 0, "minimum amount of the output token to accept")
	swapCmd.Flags().String("keypair", "", "keypair file or base58 private key of the caller")
	swapCmd.Flags().Bool("simulate", false, "simulate only, do not send")
	_ = swapCmd.MarkFlagRequired("input-mint")
	_ = swapCmd.MarkFlagRequired("amount-in")
	_ = swapCmd.MarkFlagRequired("keypair")
}
