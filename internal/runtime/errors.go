package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// InstructionErrorKey names the runtime-level reason an instruction failed.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError             InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument          InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData   InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData       InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds        InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID       InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorReadonlyDataModified     InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorNotEnoughAccountKeys     InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorAccountNotExecutable     InstructionErrorKey = "AccountNotExecutable"
	InstructionErrorCustom                   InstructionErrorKey = "Custom"
	InstructionErrorUnsupportedProgramID     InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorCallDepth                InstructionErrorKey = "CallDepth"
	InstructionErrorMissingAccount           InstructionErrorKey = "MissingAccount"
	InstructionErrorPrivilegeEscalation      InstructionErrorKey = "PrivilegeEscalation"
)

// ProgramError is the failure of one instruction, either raised by a program
// (Kind == Custom, Code set) or by the runtime itself.
type ProgramError struct {
	ProgramID solana.PublicKey
	Kind      InstructionErrorKey
	Code      uint32
}

// Error implements the error interface.
func (e *ProgramError) Error() string {
	if e.Kind == InstructionErrorCustom {
		return fmt.Sprintf("program %s failed: custom program error: 0x%x", e.ProgramID, e.Code)
	}
	return fmt.Sprintf("program %s failed: %s", e.ProgramID, e.Kind)
}

// CustomCode returns the program-defined error code, if any.
func (e *ProgramError) CustomCode() (uint32, bool) {
	if e.Kind != InstructionErrorCustom {
		return 0, false
	}
	return e.Code, true
}

// CustomError creates a program-defined error with the given code.
func CustomError(programID solana.PublicKey, code uint32) *ProgramError {
	return &ProgramError{ProgramID: programID, Kind: InstructionErrorCustom, Code: code}
}

// NewProgramError creates a runtime-level error.
func NewProgramError(programID solana.PublicKey, kind InstructionErrorKey) *ProgramError {
	return &ProgramError{ProgramID: programID, Kind: kind}
}
