package relay

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/lugondev/go-swaprelay/internal/metrics"
	"github.com/lugondev/go-swaprelay/internal/runtime"
	"github.com/lugondev/go-swaprelay/internal/token"
	"github.com/lugondev/go-swaprelay/internal/tokenswap"
	"github.com/lugondev/go-swaprelay/internal/tokenswap/tokenswaptest"
)

const (
	poolReserve    = 1_000_000_000
	callerBalanceA = 10_000_000
)

// fixture is a host holding a two-token pool served by the stub swap program,
// a caller with associated accounts for both tokens and the relay program.
type fixture struct {
	host    *runtime.Host
	relay   *Relay
	metrics *metrics.LogMetrics
	amm     *tokenswaptest.ConstantProduct
	caller  solana.PublicKey
	keys    [RoleCount]solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	host := runtime.NewHost()
	host.SetAccount(token.TokenProgramID, runtime.Account{
		Owner:      solana.BPFLoaderUpgradeableProgramID,
		Lamports:   1,
		Executable: true,
	})

	state := solana.NewWallet().PublicKey()
	authority, _, err := solana.FindProgramAddress([][]byte{state[:]}, tokenswap.ProgramID)
	require.NoError(t, err)

	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	lpMint := solana.NewWallet().PublicKey()
	for _, m := range []solana.PublicKey{mintA, mintB, lpMint} {
		host.SetAccount(m, runtime.Account{
			Owner:    token.TokenProgramID,
			Lamports: 1,
			Data:     (&token.Mint{MintAuthority: &authority, Supply: 10 * poolReserve, Decimals: 6}).Marshal(),
		})
	}

	caller := solana.NewWallet().PublicKey()
	host.SetAccount(caller, runtime.Account{Owner: solana.SystemProgramID, Lamports: 1_000_000_000})
	host.SetAccount(authority, runtime.Account{Owner: solana.SystemProgramID})
	host.SetAccount(state, runtime.Account{Owner: tokenswap.ProgramID, Lamports: 1, Data: make([]byte, 324)})

	callerA, err := token.AssociatedAddress(caller, token.TokenProgramID, mintA)
	require.NoError(t, err)
	callerB, err := token.AssociatedAddress(caller, token.TokenProgramID, mintB)
	require.NoError(t, err)
	vaultA := solana.NewWallet().PublicKey()
	vaultB := solana.NewWallet().PublicKey()
	fee := solana.NewWallet().PublicKey()

	tokenAccounts := []struct {
		key    solana.PublicKey
		mint   solana.PublicKey
		owner  solana.PublicKey
		amount uint64
	}{
		{callerA, mintA, caller, callerBalanceA},
		{callerB, mintB, caller, 0},
		{vaultA, mintA, authority, poolReserve},
		{vaultB, mintB, authority, poolReserve},
		{fee, lpMint, authority, 0},
	}
	for _, a := range tokenAccounts {
		setTokenAccount(host, a.key, a.mint, a.owner, a.amount)
	}

	amm := &tokenswaptest.ConstantProduct{Pool: tokenswaptest.Pool{
		State:        state,
		Authority:    authority,
		VaultA:       vaultA,
		VaultB:       vaultB,
		PoolMint:     lpMint,
		FeeAccount:   fee,
		TokenProgram: token.TokenProgramID,
	}}
	host.RegisterProgram(tokenswap.ProgramID, amm)

	lm := metrics.NewLogMetrics(nil)
	r := NewBuilder().
		Metrics(lm).
		AllowSwapProgram(tokenswap.ProgramID).
		Build()
	host.RegisterProgram(DefaultProgramID, NewProgram(r))

	f := &fixture{
		host:    host,
		relay:   r,
		metrics: lm,
		amm:     amm,
		caller:  caller,
	}
	f.keys[RoleInputMint] = mintA
	f.keys[RoleOutputMint] = mintB
	f.keys[RoleCallerInputTokenAccount] = callerA
	f.keys[RoleCallerOutputTokenAccount] = callerB
	f.keys[RolePoolInputTokenAccount] = vaultA
	f.keys[RolePoolOutputTokenAccount] = vaultB
	f.keys[RolePoolLpMint] = lpMint
	f.keys[RolePoolAuthority] = authority
	f.keys[RolePoolState] = state
	f.keys[RolePoolFeeAccount] = fee
	f.keys[RoleCallerAuthority] = caller
	f.keys[RoleExternalSwapProgram] = tokenswap.ProgramID
	f.keys[RoleExternalTokenProgram] = token.TokenProgramID
	return f
}

func setTokenAccount(host *runtime.Host, key, mint, owner solana.PublicKey, amount uint64) {
	host.SetAccount(key, runtime.Account{
		Owner:    token.TokenProgramID,
		Lamports: 1,
		Data:     (&token.Account{Mint: mint, Owner: owner, Amount: amount}).Marshal(),
	})
}

// roleSet builds the views the relay program would receive for f.keys.
func (f *fixture) roleSet(t *testing.T) AccountRoleSet {
	t.Helper()

	set := NewRoleSet(f.keys, f.host.Account)
	for role, info := range set {
		require.NotNil(t, info, "no account for %s", AccountRole(role))
	}
	return set
}

// execute sends swap_tokens to the relay program, followed by extra.
func (f *fixture) execute(t *testing.T, req SwapRequest, extra ...solana.Instruction) (*runtime.Receipt, error) {
	t.Helper()

	ix, err := NewSwapTokensInstruction(DefaultProgramID, f.keys, req)
	require.NoError(t, err)
	return f.host.ExecuteTransaction(context.Background(), []solana.PublicKey{f.caller}, append([]solana.Instruction{ix}, extra...)...)
}

func (f *fixture) balance(t *testing.T, role AccountRole) uint64 {
	t.Helper()

	acct, ok := f.host.Account(f.keys[role])
	require.True(t, ok)
	view, err := token.NewAccountView(acct.Data)
	require.NoError(t, err)
	return view.Amount()
}

func (f *fixture) balances(t *testing.T) map[AccountRole]uint64 {
	t.Helper()

	out := make(map[AccountRole]uint64, 4)
	for _, role := range []AccountRole{
		RoleCallerInputTokenAccount,
		RoleCallerOutputTokenAccount,
		RolePoolInputTokenAccount,
		RolePoolOutputTokenAccount,
	} {
		out[role] = f.balance(t, role)
	}
	return out
}

// with returns a copy of set whose info for role has been changed by fn.
func with(set AccountRoleSet, role AccountRole, fn func(info *runtime.AccountInfo)) AccountRoleSet {
	info := *set[role]
	fn(&info)
	set[role] = &info
	return set
}
