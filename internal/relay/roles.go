package relay

import (
	"github.com/lugondev/go-swaprelay/internal/runtime"
	"github.com/lugondev/go-swaprelay/internal/tokenswap"
)

// AccountRole is the part an account plays in a swap.
type AccountRole int

const (
	RoleInputMint AccountRole = iota
	RoleOutputMint
	RoleCallerInputTokenAccount
	RoleCallerOutputTokenAccount
	RolePoolInputTokenAccount
	RolePoolOutputTokenAccount
	RolePoolLpMint
	RolePoolAuthority
	RolePoolState
	RolePoolFeeAccount
	RoleCallerAuthority
	RoleExternalSwapProgram
	RoleExternalTokenProgram

	RoleCount
)

var roleNames = [RoleCount]string{
	RoleInputMint:                "input_mint",
	RoleOutputMint:               "output_mint",
	RoleCallerInputTokenAccount:  "caller_input_token_account",
	RoleCallerOutputTokenAccount: "caller_output_token_account",
	RolePoolInputTokenAccount:    "pool_input_token_account",
	RolePoolOutputTokenAccount:   "pool_output_token_account",
	RolePoolLpMint:               "pool_lp_mint",
	RolePoolAuthority:            "pool_authority",
	RolePoolState:                "pool_state",
	RolePoolFeeAccount:           "pool_fee_account",
	RoleCallerAuthority:          "caller_authority",
	RoleExternalSwapProgram:      "external_swap_program",
	RoleExternalTokenProgram:     "external_token_program",
}

// String returns the role name.
func (r AccountRole) String() string {
	if r < 0 || r >= RoleCount {
		return "unknown"
	}
	return roleNames[r]
}

// AccountRoleSet holds one account view per role for a single swap.
type AccountRoleSet [RoleCount]*runtime.AccountInfo

// Get returns the account bound to role, or nil.
func (s *AccountRoleSet) Get(role AccountRole) *runtime.AccountInfo {
	return s[role]
}

// Set binds an account to role.
func (s *AccountRoleSet) Set(role AccountRole, info *runtime.AccountInfo) {
	s[role] = info
}

// SwapRequest is the economic input of a swap.
type SwapRequest struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

// invokeOrder is the account-info list handed to the invoke call, in order.
var invokeOrder = []AccountRole{
	RoleExternalSwapProgram,
	RoleExternalTokenProgram,
	RolePoolState,
	RolePoolAuthority,
	RoleCallerAuthority,
	RoleCallerInputTokenAccount,
	RolePoolInputTokenAccount,
	RolePoolOutputTokenAccount,
	RoleCallerOutputTokenAccount,
	RolePoolLpMint,
	RolePoolFeeAccount,
}

// swapSlots binds each positional account of the token-swap instruction to a role.
var swapSlots = [tokenswap.SlotCount]AccountRole{
	tokenswap.SlotSwap:                  RolePoolState,
	tokenswap.SlotAuthority:             RolePoolAuthority,
	tokenswap.SlotUserTransferAuthority: RoleCallerAuthority,
	tokenswap.SlotSource:                RoleCallerInputTokenAccount,
	tokenswap.SlotSwapSource:            RolePoolInputTokenAccount,
	tokenswap.SlotSwapDestination:       RolePoolOutputTokenAccount,
	tokenswap.SlotDestination:           RoleCallerOutputTokenAccount,
	tokenswap.SlotPoolMint:              RolePoolLpMint,
	tokenswap.SlotPoolFee:               RolePoolFeeAccount,
	tokenswap.SlotTokenProgram:          RoleExternalTokenProgram,
}
