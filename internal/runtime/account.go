// Package runtime models the host ledger runtime the relay executes inside.
//
// The runtime owns account state, executes instructions atomically and routes
// cross-program invocations between registered programs. Programs never touch
// the account store directly; they only see the AccountInfo views handed to them.
package runtime

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// MaxInstructionStackDepth is the maximum depth of instruction nesting.
// See: https://github.com/anza-xyz/agave/blob/master/program-runtime/src/execution_budget.rs#L7
const MaxInstructionStackDepth = 5

// Account is the stored state of a ledger account.
type Account struct {
	// Owner is the program that owns this account.
	Owner solana.PublicKey

	// Lamports is the number of lamports held by this account.
	Lamports uint64

	// Data is the data held in this account.
	Data []byte

	// Executable indicates if the account contains a program.
	Executable bool
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	a.Data = data
	return a
}

// AccountInfo is the view of an account handed to a program for one instruction.
// Data aliases the runtime's working copy, so writes are visible to the caller
// once the instruction returns.
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	IsSigner   bool
	IsWritable bool
	Executable bool
}

// Meta returns the account meta describing this view.
func (a *AccountInfo) Meta() *solana.AccountMeta {
	return &solana.AccountMeta{
		PublicKey:  a.Key,
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
	}
}

//go:generate mockgen -source=account.go -destination=mock/runtime.go -package=mock

// Program is an on-ledger program the runtime can dispatch instructions to.
type Program interface {
	Process(ctx context.Context, invoker Invoker, programID solana.PublicKey, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx context.Context, invoker Invoker, programID solana.PublicKey, accounts []*AccountInfo, data []byte) error

// Process implements Program.
func (f ProgramFunc) Process(ctx context.Context, invoker Invoker, programID solana.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(ctx, invoker, programID, accounts, data)
}

// Invoker issues a cross-program call. The call runs inline and synchronously;
// when it returns an error every effect of the enclosing transaction is discarded
// by the runtime.
type Invoker interface {
	Invoke(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo) error
}

// FindAccount returns the first info in accounts with the given key.
func FindAccount(accounts []*AccountInfo, key solana.PublicKey) (*AccountInfo, bool) {
	for _, info := range accounts {
		if info != nil && info.Key.Equals(key) {
			return info, true
		}
	}
	return nil, false
}
