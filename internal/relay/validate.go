package relay

import (
	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"

	relayerrors "github.com/lugondev/go-swaprelay/internal/errors"
	"github.com/lugondev/go-swaprelay/internal/token"
)

// Validate checks the role set without calling out. It returns an
// InvalidAccountRole error naming the first role that fails.
func (r *Relay) Validate(accounts AccountRoleSet) error {
	for role := AccountRole(0); role < RoleCount; role++ {
		info := accounts[role]
		if info == nil || info.Key.IsZero() {
			return invalid(role, "account missing")
		}
	}

	if err := distinct(accounts, RoleInputMint, RoleOutputMint); err != nil {
		return err
	}
	if err := distinct(accounts, RoleCallerInputTokenAccount, RoleCallerOutputTokenAccount); err != nil {
		return err
	}
	if err := distinct(accounts, RolePoolInputTokenAccount, RolePoolOutputTokenAccount); err != nil {
		return err
	}

	swapProgram := accounts[RoleExternalSwapProgram]
	if !swapProgram.Executable {
		return invalid(RoleExternalSwapProgram, "account is not executable")
	}
	if len(r.swapPrograms) > 0 && !r.swapPrograms[swapProgram.Key] {
		return invalid(RoleExternalSwapProgram, "program "+swapProgram.Key.String()+" is not allowed")
	}

	tokenProgram := accounts[RoleExternalTokenProgram]
	if !token.IsTokenProgram(tokenProgram.Key) {
		return invalid(RoleExternalTokenProgram, "unknown token program "+tokenProgram.Key.String())
	}
	if !tokenProgram.Executable {
		return invalid(RoleExternalTokenProgram, "account is not executable")
	}

	caller := accounts[RoleCallerAuthority]
	if !caller.IsSigner {
		return invalid(RoleCallerAuthority, "caller did not sign")
	}

	for _, role := range []AccountRole{RoleInputMint, RoleOutputMint, RolePoolLpMint} {
		if _, err := mintOf(accounts, role); err != nil {
			return err
		}
	}
	if !accounts[RolePoolLpMint].IsWritable {
		return invalid(RolePoolLpMint, "account is not writable")
	}

	views := make(map[AccountRole]*token.AccountView, 5)
	for _, role := range []AccountRole{
		RoleCallerInputTokenAccount,
		RoleCallerOutputTokenAccount,
		RolePoolInputTokenAccount,
		RolePoolOutputTokenAccount,
		RolePoolFeeAccount,
	} {
		view, err := tokenAccountOf(accounts, role)
		if err != nil {
			return err
		}
		if !accounts[role].IsWritable {
			return invalid(role, "account is not writable")
		}
		views[role] = view
	}

	mintChecks := []struct {
		account AccountRole
		mint    AccountRole
	}{
		{RoleCallerInputTokenAccount, RoleInputMint},
		{RoleCallerOutputTokenAccount, RoleOutputMint},
		{RolePoolInputTokenAccount, RoleInputMint},
		{RolePoolOutputTokenAccount, RoleOutputMint},
		{RolePoolFeeAccount, RolePoolLpMint},
	}
	for _, c := range mintChecks {
		if got := views[c.account].Mint(); !got.Equals(accounts[c.mint].Key) {
			return invalid(c.account, "mint "+got.String()+" does not match "+c.mint.String())
		}
	}

	// The first two checks are the caller's own accounts.
	for _, c := range mintChecks[:2] {
		if !views[c.account].Owner().Equals(caller.Key) {
			return invalid(c.account, "account is not owned by the caller")
		}
		if !r.requireAssociated {
			continue
		}
		ata, err := token.AssociatedAddress(caller.Key, tokenProgram.Key, accounts[c.mint].Key)
		if err != nil {
			return relayerrors.InvalidAccountRole(c.account.String(), "cannot derive associated address").WithCause(err)
		}
		if !ata.Equals(accounts[c.account].Key) {
			return invalid(c.account, "expected associated account "+ata.String())
		}
	}

	if !accounts[RolePoolState].Owner.Equals(swapProgram.Key) {
		return invalid(RolePoolState, "account is not owned by the swap program")
	}
	if isOnCurve(accounts[RolePoolAuthority].Key) {
		return invalid(RolePoolAuthority, "authority is not a program address")
	}
	return nil
}

func invalid(role AccountRole, reason string) error {
	return relayerrors.InvalidAccountRole(role.String(), reason)
}

func distinct(accounts AccountRoleSet, a, b AccountRole) error {
	if accounts[a].Key.Equals(accounts[b].Key) {
		return invalid(b, "same account as "+a.String())
	}
	return nil
}

func ownedByTokenProgram(accounts AccountRoleSet, role AccountRole) error {
	if !accounts[role].Owner.Equals(accounts[RoleExternalTokenProgram].Key) {
		return invalid(role, "account is not owned by the token program")
	}
	return nil
}

func mintOf(accounts AccountRoleSet, role AccountRole) (*token.MintView, error) {
	if err := ownedByTokenProgram(accounts, role); err != nil {
		return nil, err
	}
	view, err := token.NewMintView(accounts[role].Data)
	if err != nil {
		return nil, relayerrors.InvalidAccountRole(role.String(), "not an initialized mint").WithCause(err)
	}
	return view, nil
}

func tokenAccountOf(accounts AccountRoleSet, role AccountRole) (*token.AccountView, error) {
	if err := ownedByTokenProgram(accounts, role); err != nil {
		return nil, err
	}
	view, err := token.NewAccountView(accounts[role].Data)
	if err != nil {
		return nil, relayerrors.InvalidAccountRole(role.String(), "not an initialized token account").WithCause(err)
	}
	return view, nil
}

// isOnCurve reports whether key decodes as an ed25519 point.
// Program-derived addresses never do.
func isOnCurve(key solana.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(key[:])
	return err == nil
}
