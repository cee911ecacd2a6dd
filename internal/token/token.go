// Package token reads the account layouts of the token-ledger program.
//
// Mints and token accounts are read in place through fixed-offset views; nothing
// is copied out of the account data unless asked for. Both the legacy token
// program and Token-2022 are recognized. Token-2022 accounts carry extensions
// after the base layout, with an account-type byte at offset 165 telling mints
// and token accounts apart.
package token

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SPL Token Program ID
var TokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// Token2022 Program ID
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// AssociatedTokenProgramID is the associated-account registry program.
var AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs
const (
	MintSize    = 82
	AccountSize = 165

	// AccountTypeOffset is where Token-2022 stores the account type of extended accounts.
	AccountTypeOffset = AccountSize
)

// AccountType discriminates extended Token-2022 accounts.
type AccountType byte

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeMint
	AccountTypeAccount
)

// AccountState is the state of a token account.
type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

var (
	ErrNotMint         = errors.New("account data is not a mint")
	ErrNotTokenAccount = errors.New("account data is not a token account")
	ErrUninitialized   = errors.New("account is not initialized")
)

// IsTokenProgram reports whether key is a known token-ledger program.
func IsTokenProgram(key solana.PublicKey) bool {
	return key.Equals(TokenProgramID) || key.Equals(Token2022ProgramID)
}

// MintView is a zero-copy view over mint account data.
//
// Layout: mint_authority COption<Pubkey>(36) + supply(8) + decimals(1) +
// is_initialized(1) + freeze_authority COption<Pubkey>(36).
type MintView struct {
	buffer []byte
}

// NewMintView checks that data is shaped like a mint and returns a view over it.
func NewMintView(data []byte) (*MintView, error) {
	switch {
	case len(data) == MintSize:
	case len(data) > AccountSize && AccountType(data[AccountTypeOffset]) == AccountTypeMint:
	default:
		return nil, ErrNotMint
	}
	v := &MintView{buffer: data}
	if !v.IsInitialized() {
		return nil, ErrUninitialized
	}
	return v, nil
}

// Supply returns the total supply of the mint.
func (v *MintView) Supply() uint64 {
	return binary.LittleEndian.Uint64(v.buffer[36:44])
}

// Decimals returns the number of base-10 digits to the right of the decimal place.
func (v *MintView) Decimals() uint8 {
	return v.buffer[44]
}

// IsInitialized reports whether the mint has been initialized.
func (v *MintView) IsInitialized() bool {
	return v.buffer[45] != 0
}

// AccountView is a zero-copy view over token account data.
//
// Layout: mint(32) + owner(32) + amount(8) + delegate COption<Pubkey>(36) +
// state(1) + is_native COption<u64>(12) + delegated_amount(8) +
// close_authority COption<Pubkey>(36).
type AccountView struct {
	buffer []byte
}

// NewAccountView checks that data is shaped like a token account and returns a view over it.
func NewAccountView(data []byte) (*AccountView, error) {
	switch {
	case len(data) == AccountSize:
	case len(data) > AccountSize && AccountType(data[AccountTypeOffset]) == AccountTypeAccount:
	default:
		return nil, ErrNotTokenAccount
	}
	v := &AccountView{buffer: data}
	if v.State() == AccountStateUninitialized {
		return nil, ErrUninitialized
	}
	return v, nil
}

// Mint returns the mint this account holds balances of.
func (v *AccountView) Mint() solana.PublicKey {
	return solana.PublicKeyFromBytes(v.buffer[0:32])
}

// Owner returns the wallet that owns this account.
func (v *AccountView) Owner() solana.PublicKey {
	return solana.PublicKeyFromBytes(v.buffer[32:64])
}

// Amount returns the token balance.
func (v *AccountView) Amount() uint64 {
	return binary.LittleEndian.Uint64(v.buffer[64:72])
}

// SetAmount overwrites the token balance in place.
func (v *AccountView) SetAmount(amount uint64) {
	binary.LittleEndian.PutUint64(v.buffer[64:72], amount)
}

// State returns the account state.
func (v *AccountView) State() AccountState {
	return AccountState(v.buffer[108])
}

// Mint is the decoded form of a mint, used to build account data.
type Mint struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	FreezeAuthority *solana.PublicKey
}

// Marshal encodes an initialized mint in the legacy layout.
func (m *Mint) Marshal() []byte {
	b := make([]byte, MintSize)
	putOptionalKey(b[0:36], m.MintAuthority)
	binary.LittleEndian.PutUint64(b[36:44], m.Supply)
	b[44] = m.Decimals
	b[45] = 1
	putOptionalKey(b[46:82], m.FreezeAuthority)
	return b
}

// Account is the decoded form of a token account, used to build account data.
type Account struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
	State  AccountState
}

// Marshal encodes the account in the legacy layout. A zero State encodes as initialized.
func (a *Account) Marshal() []byte {
	b := make([]byte, AccountSize)
	copy(b[0:32], a.Mint[:])
	copy(b[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(b[64:72], a.Amount)
	state := a.State
	if state == AccountStateUninitialized {
		state = AccountStateInitialized
	}
	b[108] = byte(state)
	return b
}

func putOptionalKey(b []byte, key *solana.PublicKey) {
	if key == nil {
		return
	}
	binary.LittleEndian.PutUint32(b[0:4], 1)
	copy(b[4:36], key[:])
}

// AssociatedAddress derives the associated token account of wallet for mint
// under the given token program.
//
// Reference: https://spl.solana.com/associated-token-account#finding-the-associated-token-account-address
func AssociatedAddress(wallet, tokenProgram, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{wallet[:], tokenProgram[:], mint[:]},
		AssociatedTokenProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated account: %w", err)
	}
	return addr, nil
}
