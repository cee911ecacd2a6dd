package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

type codedErr struct {
	code uint32
	ok   bool
}

func (e codedErr) Error() string              { return fmt.Sprintf("coded %d", e.code) }
func (e codedErr) CustomCode() (uint32, bool) { return e.code, e.ok }

func TestRelayErrorIs(t *testing.T) {
	err := InvalidAccountRole("pool_state", "account missing")

	require.ErrorIs(t, err, ErrInvalidAccountRole)
	require.NotErrorIs(t, err, ErrZeroAmount)
	require.Equal(t, "pool_state", err.Details["role"])
	require.Nil(t, ErrInvalidAccountRole.Details, "sentinel was mutated")
}

func TestIsLocal(t *testing.T) {
	programID := solana.NewWallet().PublicKey()

	tests := []struct {
		name  string
		err   error
		local bool
	}{
		{"zero amount", ZeroAmount(), true},
		{"invalid role", InvalidAccountRole("caller_authority", "caller did not sign"), true},
		{"wrapped invalid role", fmt.Errorf("relay: %w", InvalidAccountRole("x", "y")), true},
		{"external", ExternalCallFailed(programID, codedErr{code: 1, ok: true}), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.local, IsLocal(tt.err))
		})
	}
}

func TestExternalCode(t *testing.T) {
	programID := solana.NewWallet().PublicKey()

	err := ExternalCallFailed(programID, codedErr{code: 0x10, ok: true})
	code, ok := ExternalCode(err)
	require.True(t, ok)
	require.Equal(t, uint32(0x10), code)
	require.Equal(t, uint32(0x10), err.Details["code"])
	require.Equal(t, programID.String(), err.Details["program_id"])

	tests := []struct {
		name string
		err  error
	}{
		{"non-custom failure", ExternalCallFailed(programID, codedErr{ok: false})},
		{"uncoded cause", ExternalCallFailed(programID, errors.New("rpc down"))},
		{"outside ExternalCallFailed", codedErr{code: 3, ok: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExternalCode(tt.err)
			require.False(t, ok)
		})
	}
}

func TestRelayErrorMessage(t *testing.T) {
	err := DecodeFailed("swap payload", errors.New("short buffer"))
	require.EqualError(t, err, "DECODE_FAILED: failed to decode swap payload: short buffer")
	require.ErrorIs(t, err, ErrDecodeFailed)
	require.EqualError(t, Custom("x"), "CUSTOM: x")
}
