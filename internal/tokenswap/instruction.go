package tokenswap

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

const (
	SwapInstructionArgsSize = (8 + // amount_in
		8) // minimum_amount_out

	// SwapInstructionSize is the full payload length: tag + args.
	SwapInstructionSize = 1 + SwapInstructionArgsSize
)

// SwapInstructionArgs is the payload of a swap instruction.
type SwapInstructionArgs struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

// Marshal encodes the payload as [tag=1][amount_in u64 LE][minimum_amount_out u64 LE].
func (a SwapInstructionArgs) Marshal() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, SwapInstructionSize))
	enc := bin.NewBinEncoder(buf)

	if err := enc.WriteUint8(uint8(CommandSwap)); err != nil {
		return nil, fmt.Errorf("failed to write instruction tag: %w", err)
	}
	if err := enc.WriteUint64(a.AmountIn, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to write amount_in: %w", err)
	}
	if err := enc.WriteUint64(a.MinimumAmountOut, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to write minimum_amount_out: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalSwapInstruction decodes a swap payload. The payload must be exactly
// SwapInstructionSize bytes and carry the swap tag.
func UnmarshalSwapInstruction(data []byte) (*SwapInstructionArgs, error) {
	if len(data) != SwapInstructionSize {
		return nil, fmt.Errorf("invalid swap instruction size: %d (expected %d)", len(data), SwapInstructionSize)
	}

	dec := bin.NewBinDecoder(data)

	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to read instruction tag: %w", err)
	}
	if Command(tag) != CommandSwap {
		return nil, fmt.Errorf("unexpected instruction tag: %d (expected %d)", tag, CommandSwap)
	}

	var args SwapInstructionArgs
	if args.AmountIn, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to read amount_in: %w", err)
	}
	if args.MinimumAmountOut, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to read minimum_amount_out: %w", err)
	}
	return &args, nil
}
