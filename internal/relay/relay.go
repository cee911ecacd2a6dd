// Package relay implements the swap relay: it validates the accounts of a swap,
// encodes the token-swap instruction and hands it to the external AMM program
// through the host runtime. The relay never prices a swap and never holds funds;
// whatever the AMM decides is returned to the caller unchanged.
package relay

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/lugondev/go-swaprelay/internal/common"
	relayerrors "github.com/lugondev/go-swaprelay/internal/errors"
	"github.com/lugondev/go-swaprelay/internal/metrics"
	"github.com/lugondev/go-swaprelay/internal/runtime"
	"github.com/lugondev/go-swaprelay/internal/tokenswap"
)

// Relay forwards swaps to an external token-swap program.
// A Relay holds no per-swap state and may be shared.
type Relay struct {
	common.LoggerMixin

	metrics           *metrics.Collection
	swapPrograms      map[solana.PublicKey]bool
	requireAssociated bool
	slots             [tokenswap.SlotCount]AccountRole
}

// New creates a relay that accepts any swap program and requires the caller's
// token accounts to be associated accounts.
func New() *Relay {
	return &Relay{
		LoggerMixin:       common.NewLoggerMixin(),
		metrics:           metrics.NewCollection(),
		swapPrograms:      make(map[solana.PublicKey]bool),
		requireAssociated: true,
		slots:             swapSlots,
	}
}

// ExecuteSwap validates accounts, then calls the external swap program with
// amountIn and minimumAmountOut. It returns nil only if the external program
// succeeded. Local failures are InvalidAccountRole or ZeroAmount and happen
// before any call; a rejection by the external program is ExternalCallFailed
// wrapping the program's error.
func (r *Relay) ExecuteSwap(ctx context.Context, invoker runtime.Invoker, accounts AccountRoleSet, amountIn, minimumAmountOut uint64) error {
	logger := r.GetLogger().With("swap_id", uuid.NewString())
	start := time.Now()
	r.count(ctx, metrics.MetricSwapsRequested)
	defer func() {
		_ = r.metrics.RecordHistogram(ctx, metrics.MetricSwapDurationMicroseconds, float64(time.Since(start).Microseconds()))
	}()

	if amountIn == 0 {
		r.count(ctx, metrics.MetricSwapsRejectedLocal)
		logger.Warn("swap rejected", "error", "zero amount")
		return relayerrors.ZeroAmount()
	}
	if err := r.Validate(accounts); err != nil {
		r.count(ctx, metrics.MetricSwapsRejectedLocal)
		logger.Warn("swap rejected", "error", err)
		return err
	}

	req := SwapRequest{AmountIn: amountIn, MinimumAmountOut: minimumAmountOut}
	ix, infos, err := r.buildCall(accounts, req)
	if err != nil {
		r.count(ctx, metrics.MetricSwapsRejectedLocal)
		return err
	}
	_ = r.metrics.RecordHistogram(ctx, metrics.MetricSwapAmountIn, float64(amountIn))

	programID := accounts[RoleExternalSwapProgram].Key
	logger.Debug("invoking swap program",
		"program", programID,
		"amount_in", amountIn,
		"minimum_amount_out", minimumAmountOut,
		"accounts", len(infos),
	)

	if err := invoker.Invoke(ctx, ix, infos); err != nil {
		r.count(ctx, metrics.MetricSwapsExternalFailed)
		failed := relayerrors.ExternalCallFailed(programID, err)
		var pe *runtime.ProgramError
		if errors.As(err, &pe) && pe.ProgramID.Equals(programID) {
			if code, ok := pe.CustomCode(); ok {
				if name := tokenswap.ErrorName(code); name != "" {
					failed.Details["error_name"] = name
				}
			}
		}
		logger.Warn("swap failed", "error", failed, "details", failed.Details)
		return failed
	}

	r.count(ctx, metrics.MetricSwapsSucceeded)
	logger.Info("swap executed", "program", programID, "amount_in", amountIn, "duration", time.Since(start))
	return nil
}

// buildCall assembles the token-swap instruction and the account-info list
// handed to the invoke call.
func (r *Relay) buildCall(accounts AccountRoleSet, req SwapRequest) (solana.Instruction, []*runtime.AccountInfo, error) {
	var keys [tokenswap.SlotCount]solana.PublicKey
	for slot, role := range r.slots {
		keys[slot] = accounts[role].Key
	}

	ix, err := tokenswap.NewSwapInstruction(accounts[RoleExternalSwapProgram].Key, keys, tokenswap.SwapInstructionArgs{
		AmountIn:         req.AmountIn,
		MinimumAmountOut: req.MinimumAmountOut,
	})
	if err != nil {
		return nil, nil, relayerrors.Custom("failed to encode swap instruction").WithCause(err)
	}

	infos := make([]*runtime.AccountInfo, 0, len(invokeOrder))
	for _, role := range invokeOrder {
		infos = append(infos, accounts[role])
	}
	return ix, infos, nil
}

func (r *Relay) count(ctx context.Context, name string) {
	if err := r.metrics.IncrementCounter(ctx, name, 1); err != nil {
		r.GetLogger().Debug("metrics update failed", "metric", name, "error", err)
	}
}
