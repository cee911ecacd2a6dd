package log

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	relayID = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"
	swapID  = "SwapsVeCiPHMUAtzQWZw7RjsKjgCjhwU55QGu4U1Szw"
)

func TestParse(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name    string
		log     string
		want    LogType
		program string
	}{
		{"invoke", "Program " + swapID + " invoke [2]", LogTypeInvoke, swapID},
		{"success", "Program " + swapID + " success", LogTypeSuccess, swapID},
		{"failed", "Program " + swapID + " failed: custom program error: 0x10", LogTypeFailed, swapID},
		{"log", "Program log: Instruction: Swap", LogTypeLog, ""},
		{"compute", "Program " + swapID + " consumed 2000 of 200000 compute units", LogTypeComputeUnits, swapID},
		{"unknown", "something else", LogTypeUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.log)
			require.Equal(t, tt.want, got.Type)
			require.Equal(t, tt.program, got.ProgramID)
		})
	}

	failed := p.Parse("Program " + swapID + " failed: custom program error: 0x10")
	require.True(t, failed.HasCode)
	require.Equal(t, uint32(0x10), failed.Code)

	cu := p.Parse("Program " + swapID + " consumed 2000 of 200000 compute units").ComputeUnits
	require.NotNil(t, cu)
	require.Equal(t, uint64(2000), *cu)
}

func TestFailure(t *testing.T) {
	p := NewParser()

	logs := []string{
		"Program " + relayID + " invoke [1]",
		"Program log: Instruction: SwapTokens",
		"Program " + swapID + " invoke [2]",
		"Program log: Instruction: Swap",
		"Program " + swapID + " failed: custom program error: 0x10",
		"Program " + relayID + " failed: custom program error: 0x10",
	}

	f := p.Failure(logs)
	require.NotNil(t, f)
	require.Equal(t, swapID, f.ProgramID)
	require.Equal(t, 2, f.StackHeight)
	require.True(t, f.HasCode)
	require.Equal(t, uint32(0x10), f.Code)
	require.Empty(t, f.Account)

	require.Nil(t, p.Failure(logs[:4]))

	runtime := p.Failure([]string{
		"Program " + relayID + " invoke [1]",
		"Program " + relayID + " failed: PrivilegeEscalation",
	})
	require.NotNil(t, runtime)
	require.False(t, runtime.HasCode)
	require.Equal(t, "PrivilegeEscalation", runtime.Reason)
}

func TestFailureAnchorAccount(t *testing.T) {
	p := NewParser()

	f := p.Failure([]string{
		"Program " + relayID + " invoke [1]",
		"Program log: Instruction: SwapTokens",
		"Program log: AnchorError caused by account: source. Error Code: ConstraintAssociated. Error Number: 2009. Error Message: An associated constraint was violated.",
		"Program " + relayID + " consumed 9000 of 200000 compute units",
		"Program " + relayID + " failed: custom program error: 0x7d9",
	})
	require.NotNil(t, f)
	require.Equal(t, relayID, f.ProgramID)
	require.Equal(t, 1, f.StackHeight)
	require.Equal(t, "source", f.Account)
	require.True(t, f.HasCode)
	require.Equal(t, uint32(2009), f.Code)
}
