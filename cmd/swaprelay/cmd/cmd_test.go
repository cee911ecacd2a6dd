package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	relayerrors "github.com/lugondev/go-swaprelay/internal/errors"
	"github.com/lugondev/go-swaprelay/internal/metrics"
	"github.com/lugondev/go-swaprelay/internal/relay"
	solanaclient "github.com/lugondev/go-swaprelay/internal/solana"
	"github.com/lugondev/go-swaprelay/internal/tokenswap"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestEncodeCommand(t *testing.T) {
	out := run(t, "encode", "--amount-in", "1000000", "--min-out", "990000", "--output", "yaml")

	var enc encodedSwap
	require.NoError(t, yaml.Unmarshal([]byte(out), &enc))
	require.Equal(t, uint64(1_000_000), enc.AmountIn)
	require.Equal(t, "0140420f0000000000301b0f0000000000", enc.SwapHex)
	require.Len(t, enc.RelayHex, 2*24)

	text := run(t, "encode", "--amount-in", "1000000", "--min-out", "990000", "--output", "text")
	require.True(t, strings.Contains(text, "Swap payload (17 bytes)"))
}

func TestVersionCommand(t *testing.T) {
	require.Contains(t, run(t, "version"), "swaprelay")
}

func TestSimulationError(t *testing.T) {
	relayID := relay.DefaultProgramID.String()
	swap := tokenswap.ProgramID.String()

	sim := &solanaclient.SimulationResult{
		Err: map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 16}}},
		Logs: []string{
			"Program " + relayID + " invoke [1]",
			"Program " + swap + " invoke [2]",
			"Program " + swap + " failed: custom program error: 0x10",
			"Program " + relayID + " failed: custom program error: 0x10",
		},
	}

	err := simulationError(relay.DefaultProgramID, tokenswap.ProgramID, sim)
	require.ErrorIs(t, err, relayerrors.ErrExternalCallFailed)

	code, ok := relayerrors.ExternalCode(err)
	require.True(t, ok)
	require.Equal(t, uint32(0x10), code)

	var re *relayerrors.RelayError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "ExceededSlippage", re.Details["error_name"])

	noLogs := simulationError(relay.DefaultProgramID, solana.SystemProgramID, &solanaclient.SimulationResult{Err: "BlockhashNotFound"})
	require.ErrorIs(t, noLogs, relayerrors.NewError(relayerrors.ErrCodeCustom, ""))
}

func TestSimulationErrorRelayRejection(t *testing.T) {
	relayID := relay.DefaultProgramID.String()

	tests := []struct {
		name string
		logs []string
		role string
	}{
		{
			name: "anchor constraint",
			logs: []string{
				"Program " + relayID + " invoke [1]",
				"Program log: AnchorError caused by account: source. Error Code: ConstraintAssociated. Error Number: 2009. Error Message: An associated constraint was violated.",
				"Program " + relayID + " failed: custom program error: 0x7d9",
			},
			role: "source",
		},
		{
			name: "no account logged",
			logs: []string{
				"Program " + relayID + " invoke [1]",
				"Program " + relayID + " failed: custom program error: 0x7de",
			},
			role: "swap_tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := &solanaclient.SimulationResult{
				Err:  map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 2009}}},
				Logs: tt.logs,
			}

			err := simulationError(relay.DefaultProgramID, tokenswap.ProgramID, sim)
			require.ErrorIs(t, err, relayerrors.ErrInvalidAccountRole)
			require.NotErrorIs(t, err, relayerrors.ErrExternalCallFailed)
			require.True(t, relayerrors.IsLocal(err))

			_, external := relayerrors.ExternalCode(err)
			require.False(t, external)

			var re *relayerrors.RelayError
			require.ErrorAs(t, err, &re)
			require.Equal(t, tt.role, re.Details["role"])
			require.Contains(t, re.Details, "code")
		})
	}
}

type fakeSender struct {
	sig solana.Signature
	err error
}

func (f fakeSender) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return f.sig, f.err
}

func TestSendSwapCountsSent(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewLogMetrics(nil)

	want := solana.Signature{1, 2, 3}
	sig, err := sendSwap(ctx, fakeSender{sig: want}, m, &solana.Transaction{})
	require.NoError(t, err)
	require.Equal(t, want, sig)
	require.Equal(t, uint64(1), m.Counter(metrics.MetricSwapsSent))
	require.Zero(t, m.Counter(metrics.MetricSwapsSucceeded), "an unconfirmed send is not a success")

	_, err = sendSwap(ctx, fakeSender{err: errors.New("node unavailable")}, m, &solana.Transaction{})
	require.Error(t, err)
	require.Equal(t, uint64(1), m.Counter(metrics.MetricSwapsSent))
}
