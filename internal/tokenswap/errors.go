package tokenswap

// Error is a custom error code returned by the token-swap program.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-swap/program/src/error.rs
type Error uint32

const (
	ErrorAlreadyInUse Error = iota
	ErrorInvalidProgramAddress
	ErrorInvalidOwner
	ErrorInvalidOutputOwner
	ErrorExpectedMint
	ErrorExpectedAccount
	ErrorEmptySupply
	ErrorInvalidSupply
	ErrorRepeatedMint
	ErrorInvalidDelegate
	ErrorInvalidInput
	ErrorIncorrectSwapAccount
	ErrorIncorrectPoolMint
	ErrorInvalidOutput
	ErrorCalculationFailure
	ErrorInvalidInstruction
	ErrorExceededSlippage
	ErrorInvalidCloseAuthority
	ErrorInvalidFreezeAuthority
	ErrorIncorrectFeeAccount
	ErrorZeroTradingTokens
	ErrorFeeCalculationFailure
	ErrorConversionFailure
	ErrorInvalidFee
	ErrorIncorrectTokenProgramID
	ErrorUnsupportedCurveType
	ErrorInvalidCurve
	ErrorUnsupportedCurveOperation
)

var errorNames = map[Error]string{
	ErrorAlreadyInUse:              "AlreadyInUse",
	ErrorInvalidProgramAddress:     "InvalidProgramAddress",
	ErrorInvalidOwner:              "InvalidOwner",
	ErrorInvalidOutputOwner:        "InvalidOutputOwner",
	ErrorExpectedMint:              "ExpectedMint",
	ErrorExpectedAccount:           "ExpectedAccount",
	ErrorEmptySupply:               "EmptySupply",
	ErrorInvalidSupply:             "InvalidSupply",
	ErrorRepeatedMint:              "RepeatedMint",
	ErrorInvalidDelegate:           "InvalidDelegate",
	ErrorInvalidInput:              "InvalidInput",
	ErrorIncorrectSwapAccount:      "IncorrectSwapAccount",
	ErrorIncorrectPoolMint:         "IncorrectPoolMint",
	ErrorInvalidOutput:             "InvalidOutput",
	ErrorCalculationFailure:        "CalculationFailure",
	ErrorInvalidInstruction:        "InvalidInstruction",
	ErrorExceededSlippage:          "ExceededSlippage",
	ErrorInvalidCloseAuthority:     "InvalidCloseAuthority",
	ErrorInvalidFreezeAuthority:    "InvalidFreezeAuthority",
	ErrorIncorrectFeeAccount:       "IncorrectFeeAccount",
	ErrorZeroTradingTokens:         "ZeroTradingTokens",
	ErrorFeeCalculationFailure:     "FeeCalculationFailure",
	ErrorConversionFailure:         "ConversionFailure",
	ErrorInvalidFee:                "InvalidFee",
	ErrorIncorrectTokenProgramID:   "IncorrectTokenProgramId",
	ErrorUnsupportedCurveType:      "UnsupportedCurveType",
	ErrorInvalidCurve:              "InvalidCurve",
	ErrorUnsupportedCurveOperation: "UnsupportedCurveOperation",
}

// ErrorName returns the program's name for a custom error code, or "" when the
// code is not one the token-swap program defines.
func ErrorName(code uint32) string {
	return errorNames[Error(code)]
}
