// Package tokenswaptest provides stand-ins for the external token-swap program
// that run inside runtime.Host. They follow the token-swap account layout and
// error codes closely enough to exercise callers end to end; the pricing is a
// plain constant-product curve without fees.
package tokenswaptest

import (
	"context"
	"math/bits"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swaprelay/internal/runtime"
	"github.com/lugondev/go-swaprelay/internal/token"
	"github.com/lugondev/go-swaprelay/internal/tokenswap"
)

// Token program custom error codes used when a transfer fails.
const (
	TokenErrorInsufficientFunds uint32 = 1
	TokenErrorMintMismatch      uint32 = 3
	TokenErrorOwnerMismatch     uint32 = 4
)

// Pool is the fixed configuration of one stub pool.
type Pool struct {
	State        solana.PublicKey
	Authority    solana.PublicKey
	VaultA       solana.PublicKey
	VaultB       solana.PublicKey
	PoolMint     solana.PublicKey
	FeeAccount   solana.PublicKey
	TokenProgram solana.PublicKey
}

// ConstantProduct is a stub swap program serving a single pool.
type ConstantProduct struct {
	Pool Pool

	// Calls counts Process invocations.
	Calls int
}

// Process implements runtime.Program.
func (p *ConstantProduct) Process(ctx context.Context, invoker runtime.Invoker, programID solana.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	p.Calls++

	args, err := tokenswap.UnmarshalSwapInstruction(data)
	if err != nil {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorInvalidInstruction))
	}
	if len(accounts) < int(tokenswap.SlotCount) {
		return runtime.NewProgramError(programID, runtime.InstructionErrorNotEnoughAccountKeys)
	}
	slot := func(s tokenswap.Slot) *runtime.AccountInfo { return accounts[s] }

	if !slot(tokenswap.SlotSwap).Key.Equals(p.Pool.State) || !slot(tokenswap.SlotSwap).Owner.Equals(programID) {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorIncorrectSwapAccount))
	}
	if !slot(tokenswap.SlotAuthority).Key.Equals(p.Pool.Authority) {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorInvalidProgramAddress))
	}
	if !slot(tokenswap.SlotTokenProgram).Key.Equals(p.Pool.TokenProgram) {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorIncorrectTokenProgramID))
	}
	if !slot(tokenswap.SlotPoolMint).Key.Equals(p.Pool.PoolMint) {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorIncorrectPoolMint))
	}
	if !slot(tokenswap.SlotPoolFee).Key.Equals(p.Pool.FeeAccount) {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorIncorrectFeeAccount))
	}

	swapSource := slot(tokenswap.SlotSwapSource).Key
	swapDestination := slot(tokenswap.SlotSwapDestination).Key
	isVault := func(k solana.PublicKey) bool { return k.Equals(p.Pool.VaultA) || k.Equals(p.Pool.VaultB) }
	if !isVault(swapSource) || !isVault(swapDestination) || swapSource.Equals(swapDestination) {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorIncorrectSwapAccount))
	}

	authority := slot(tokenswap.SlotUserTransferAuthority)
	if !authority.IsSigner {
		return runtime.NewProgramError(programID, runtime.InstructionErrorMissingRequiredSignature)
	}

	views := make(map[tokenswap.Slot]*token.AccountView, 4)
	for _, s := range []tokenswap.Slot{tokenswap.SlotSource, tokenswap.SlotSwapSource, tokenswap.SlotSwapDestination, tokenswap.SlotDestination} {
		view, err := token.NewAccountView(slot(s).Data)
		if err != nil {
			return runtime.CustomError(programID, uint32(tokenswap.ErrorExpectedAccount))
		}
		views[s] = view
	}
	source, vaultIn := views[tokenswap.SlotSource], views[tokenswap.SlotSwapSource]
	vaultOut, destination := views[tokenswap.SlotSwapDestination], views[tokenswap.SlotDestination]

	reserveIn, reserveOut := vaultIn.Amount(), vaultOut.Amount()
	if reserveIn == 0 || reserveOut == 0 {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorEmptySupply))
	}
	amountOut, ok := SwapOutput(reserveIn, reserveOut, args.AmountIn)
	if !ok {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorCalculationFailure))
	}
	if amountOut == 0 {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorZeroTradingTokens))
	}
	if amountOut < args.MinimumAmountOut {
		return runtime.CustomError(programID, uint32(tokenswap.ErrorExceededSlippage))
	}

	// Transfer in: source -> swap_source, signed by the user transfer authority.
	if !source.Mint().Equals(vaultIn.Mint()) {
		return runtime.CustomError(p.Pool.TokenProgram, TokenErrorMintMismatch)
	}
	if !source.Owner().Equals(authority.Key) {
		return runtime.CustomError(p.Pool.TokenProgram, TokenErrorOwnerMismatch)
	}
	if source.Amount() < args.AmountIn {
		return runtime.CustomError(p.Pool.TokenProgram, TokenErrorInsufficientFunds)
	}
	// Transfer out: swap_destination -> destination, signed by the pool authority.
	if !vaultOut.Mint().Equals(destination.Mint()) {
		return runtime.CustomError(p.Pool.TokenProgram, TokenErrorMintMismatch)
	}

	source.SetAmount(source.Amount() - args.AmountIn)
	vaultIn.SetAmount(vaultIn.Amount() + args.AmountIn)
	vaultOut.SetAmount(vaultOut.Amount() - amountOut)
	destination.SetAmount(destination.Amount() + amountOut)

	if l, ok := invoker.(runtime.ProgramLogger); ok {
		l.Log("Instruction: Swap")
		l.Log("swapped %d for %d", args.AmountIn, amountOut)
	}
	return nil
}

// Rejecting returns a program that fails every instruction with the given custom code.
func Rejecting(code uint32) runtime.ProgramFunc {
	return func(ctx context.Context, invoker runtime.Invoker, programID solana.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
		return runtime.CustomError(programID, code)
	}
}

// SwapOutput returns reserveOut * amountIn / (reserveIn + amountIn) with a
// 128-bit intermediate product. ok is false when reserveIn + amountIn does not
// fit in 64 bits.
func SwapOutput(reserveIn, reserveOut, amountIn uint64) (amountOut uint64, ok bool) {
	denominator, carry := bits.Add64(reserveIn, amountIn, 0)
	if carry != 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(reserveOut, amountIn)
	// The quotient is below reserveOut, so hi < denominator and Div64 cannot panic.
	amountOut, _ = bits.Div64(hi, lo, denominator)
	return amountOut, true
}
