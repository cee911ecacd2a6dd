package relay

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	relayerrors "github.com/lugondev/go-swaprelay/internal/errors"
	"github.com/lugondev/go-swaprelay/internal/runtime"
	"github.com/lugondev/go-swaprelay/internal/token"
)

// DefaultProgramID is the address the relay program is deployed at.
var DefaultProgramID = solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")

// SwapTokensDiscriminator prefixes the data of a swap_tokens instruction.
var SwapTokensDiscriminator = discriminator("global:swap_tokens")

const (
	DiscriminatorSize = 8

	// SwapTokensInstructionSize is discriminator + amount_in + minimum_amount_out.
	SwapTokensInstructionSize = DiscriminatorSize + 8 + 8
)

// inboundAccount is one positional account of the swap_tokens instruction.
type inboundAccount struct {
	Role     AccountRole
	Signer   bool
	Writable bool
}

// inboundLayout lists the accounts of swap_tokens in order. The instruction
// also carries the associated token, system and rent accounts after these;
// they are required by the deployed program but never read.
var inboundLayout = [RoleCount]inboundAccount{
	{RoleOutputMint, false, false},
	{RoleInputMint, false, false},
	{RoleCallerOutputTokenAccount, false, true},
	{RoleCallerInputTokenAccount, false, true},
	{RolePoolOutputTokenAccount, false, true},
	{RolePoolInputTokenAccount, false, true},
	{RolePoolLpMint, false, true},
	{RolePoolState, false, false},
	{RolePoolAuthority, false, true},
	{RolePoolFeeAccount, false, true},
	{RoleCallerAuthority, true, true},
	{RoleExternalSwapProgram, false, false},
	{RoleExternalTokenProgram, false, false},
}

func discriminator(name string) [DiscriminatorSize]byte {
	var d [DiscriminatorSize]byte
	sum := sha256.Sum256([]byte(name))
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// EncodeSwapTokens encodes the data of a swap_tokens instruction.
func EncodeSwapTokens(req SwapRequest) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, SwapTokensInstructionSize))
	enc := bin.NewBinEncoder(buf)

	if err := enc.WriteBytes(SwapTokensDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(req.AmountIn, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(req.MinimumAmountOut, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSwapTokens decodes the data of a swap_tokens instruction.
func DecodeSwapTokens(data []byte) (*SwapRequest, error) {
	if len(data) != SwapTokensInstructionSize {
		return nil, relayerrors.DecodeFailed("swap_tokens instruction", nil).
			WithDetails(map[string]any{"size": len(data), "expected": SwapTokensInstructionSize})
	}
	if !bytes.Equal(data[:DiscriminatorSize], SwapTokensDiscriminator[:]) {
		return nil, relayerrors.DecodeFailed("swap_tokens instruction", nil).
			WithDetails(map[string]any{"reason": "unknown discriminator"})
	}

	dec := bin.NewBinDecoder(data[DiscriminatorSize:])
	var req SwapRequest
	var err error
	if req.AmountIn, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, relayerrors.DecodeFailed("amount_in", err)
	}
	if req.MinimumAmountOut, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, relayerrors.DecodeFailed("minimum_amount_out", err)
	}
	return &req, nil
}

// NewSwapTokensInstruction builds the swap_tokens instruction a client sends to
// the relay program. keys is indexed by role.
func NewSwapTokensInstruction(programID solana.PublicKey, keys [RoleCount]solana.PublicKey, req SwapRequest) (*solana.GenericInstruction, error) {
	data, err := EncodeSwapTokens(req)
	if err != nil {
		return nil, err
	}

	metas := make(solana.AccountMetaSlice, 0, len(inboundLayout)+3)
	for _, a := range inboundLayout {
		metas = append(metas, &solana.AccountMeta{
			PublicKey:  keys[a.Role],
			IsSigner:   a.Signer,
			IsWritable: a.Writable,
		})
	}
	metas = append(metas,
		solana.Meta(token.AssociatedTokenProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	)
	return solana.NewInstruction(programID, metas, data), nil
}

// Program is the on-ledger entrypoint of the relay. It decodes swap_tokens,
// maps the positional accounts to roles and runs ExecuteSwap.
type Program struct {
	Relay *Relay
}

// NewProgram creates the entrypoint for r.
func NewProgram(r *Relay) *Program {
	return &Program{Relay: r}
}

// Process implements runtime.Program.
func (p *Program) Process(ctx context.Context, invoker runtime.Invoker, programID solana.PublicKey, accounts []*runtime.AccountInfo, data []byte) error {
	req, err := DecodeSwapTokens(data)
	if err != nil {
		return err
	}
	if len(accounts) < len(inboundLayout) {
		return runtime.NewProgramError(programID, runtime.InstructionErrorNotEnoughAccountKeys)
	}

	var set AccountRoleSet
	for i, a := range inboundLayout {
		set[a.Role] = accounts[i]
	}
	return p.Relay.ExecuteSwap(ctx, invoker, set, req.AmountIn, req.MinimumAmountOut)
}

// NewRoleSet builds the role set a swap_tokens instruction with the given keys
// would hand to the relay, reading account state through lookup. Accounts that
// lookup does not find are left unset.
func NewRoleSet(keys [RoleCount]solana.PublicKey, lookup func(solana.PublicKey) (runtime.Account, bool)) AccountRoleSet {
	var set AccountRoleSet
	for _, a := range inboundLayout {
		key := keys[a.Role]
		acct, ok := lookup(key)
		if !ok {
			continue
		}
		set[a.Role] = &runtime.AccountInfo{
			Key:        key,
			Owner:      acct.Owner,
			Lamports:   acct.Lamports,
			Data:       acct.Data,
			IsSigner:   a.Signer,
			IsWritable: a.Writable,
			Executable: acct.Executable,
		}
	}
	return set
}
