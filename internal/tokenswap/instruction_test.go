package tokenswap

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestSwapInstructionRoundTrip(t *testing.T) {
	args := SwapInstructionArgs{AmountIn: 1_000_000, MinimumAmountOut: 990_000}

	data, err := args.Marshal()
	require.NoError(t, err)
	require.Len(t, data, 17)

	// Decode with the documented layout directly, independent of the decoder.
	require.Equal(t, byte(1), data[0])
	require.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[1:9]))
	require.Equal(t, uint64(990_000), binary.LittleEndian.Uint64(data[9:17]))

	decoded, err := UnmarshalSwapInstruction(data)
	require.NoError(t, err)
	require.Equal(t, args, *decoded)
}

func TestUnmarshalSwapInstructionRejects(t *testing.T) {
	valid, err := SwapInstructionArgs{AmountIn: 5, MinimumAmountOut: 1}.Marshal()
	require.NoError(t, err)

	wrongTag := append([]byte(nil), valid...)
	wrongTag[0] = byte(CommandDepositAllTokenTypes)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", valid[:16]},
		{"trailing byte", append(append([]byte(nil), valid...), 0)},
		{"wrong tag", wrongTag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalSwapInstruction(tt.data)
			require.Error(t, err)
		})
	}
}

func TestNewSwapInstructionLayout(t *testing.T) {
	var keys [SlotCount]solana.PublicKey
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}

	ix, err := NewSwapInstruction(ProgramID, keys, SwapInstructionArgs{AmountIn: 10, MinimumAmountOut: 5})
	require.NoError(t, err)
	require.Equal(t, ProgramID, ix.ProgramID())

	metas := ix.Accounts()
	require.Len(t, metas, int(SlotCount))
	for i, meta := range metas {
		layout := SwapAccountLayout[i]
		require.Equal(t, keys[i], meta.PublicKey, "slot %s", layout.Slot)
		require.Equal(t, layout.Signer, meta.IsSigner, "slot %s signer", layout.Slot)
		require.Equal(t, layout.Writable, meta.IsWritable, "slot %s writable", layout.Slot)
	}

	require.True(t, metas[SlotUserTransferAuthority].IsSigner, "user transfer authority must be a signer")
}

func TestErrorName(t *testing.T) {
	require.Equal(t, "ExceededSlippage", ErrorName(0x10))
	require.Empty(t, ErrorName(9999))
}
