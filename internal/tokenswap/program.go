// Package tokenswap describes the wire contract of the external token-swap
// program: its instruction tags, the byte layout of the swap payload, the
// positional account layout of the swap instruction and its error codes.
//
// Nothing here prices or executes a swap; that is owned by the external program.
package tokenswap

import (
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the address of the deployed token-swap program.
//
// Current key: SwapsVeCiPHMUAtzQWZw7RjsKjgCjhwU55QGu4U1Szw
var ProgramID = solana.MustPublicKeyFromBase58("SwapsVeCiPHMUAtzQWZw7RjsKjgCjhwU55QGu4U1Szw")

// Command is the one-byte instruction tag.
type Command byte

const (
	// nolint:varcheck,deadcode,unused
	CommandInitialize Command = iota
	CommandSwap
	// nolint:varcheck,deadcode,unused
	CommandDepositAllTokenTypes
	// nolint:varcheck,deadcode,unused
	CommandWithdrawAllTokenTypes
	// nolint:varcheck,deadcode,unused
	CommandDepositSingleTokenTypeExactAmountIn
	// nolint:varcheck,deadcode,unused
	CommandWithdrawSingleTokenTypeExactAmountOut
)

// Slot is a positional account index of the swap instruction.
type Slot int

const (
	SlotSwap Slot = iota
	SlotAuthority
	SlotUserTransferAuthority
	SlotSource
	SlotSwapSource
	SlotSwapDestination
	SlotDestination
	SlotPoolMint
	SlotPoolFee
	SlotTokenProgram

	SlotCount
)

// SlotSpec describes one positional account of the swap instruction.
type SlotSpec struct {
	Slot     Slot
	Name     string
	Signer   bool
	Writable bool
}

// SwapAccountLayout is the account layout the token-swap program expects for a swap.
// Swapping the source and destination slots of the same token type does not fail
// to decode; it reverses the trade.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-swap/program/src/instruction.rs
var SwapAccountLayout = [SlotCount]SlotSpec{
	{SlotSwap, "swap", false, false},
	{SlotAuthority, "authority", false, false},
	{SlotUserTransferAuthority, "user_transfer_authority", true, false},
	{SlotSource, "source", false, true},
	{SlotSwapSource, "swap_source", false, true},
	{SlotSwapDestination, "swap_destination", false, true},
	{SlotDestination, "destination", false, true},
	{SlotPoolMint, "pool_mint", false, true},
	{SlotPoolFee, "pool_fee", false, true},
	{SlotTokenProgram, "token_program", false, false},
}

// String returns the slot name.
func (s Slot) String() string {
	if s < 0 || s >= SlotCount {
		return "unknown"
	}
	return SwapAccountLayout[s].Name
}

// NewSwapInstruction builds the swap instruction for the given program. keys is
// indexed by Slot.
func NewSwapInstruction(programID solana.PublicKey, keys [SlotCount]solana.PublicKey, args SwapInstructionArgs) (*solana.GenericInstruction, error) {
	data, err := args.Marshal()
	if err != nil {
		return nil, err
	}

	metas := make(solana.AccountMetaSlice, 0, SlotCount)
	for _, layout := range SwapAccountLayout {
		metas = append(metas, &solana.AccountMeta{
			PublicKey:  keys[layout.Slot],
			IsSigner:   layout.Signer,
			IsWritable: layout.Writable,
		})
	}

	return solana.NewInstruction(programID, metas, data), nil
}
