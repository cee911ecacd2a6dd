package runtime

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swaprelay/internal/common"
)

// ProgramLogger is implemented by invokers that collect program log lines.
type ProgramLogger interface {
	Log(format string, args ...any)
}

// Receipt holds the outcome of an executed transaction.
type Receipt struct {
	// Logs are the program log lines in the ledger's log format, for example
	// "Program <id> invoke [1]" and "Program <id> failed: custom program error: 0x10".
	Logs []string
}

// Host is an in-process ledger runtime. Transactions execute one at a time and
// are all-or-nothing: account changes are made on working copies and committed
// only when every instruction succeeded.
type Host struct {
	common.LoggerMixin

	mu       sync.Mutex
	accounts map[solana.PublicKey]Account
	programs map[solana.PublicKey]Program
}

// NewHost creates an empty runtime.
func NewHost() *Host {
	return &Host{
		LoggerMixin: common.NewLoggerMixin(),
		accounts:    make(map[solana.PublicKey]Account),
		programs:    make(map[solana.PublicKey]Program),
	}
}

// RegisterProgram deploys a program at the given address. The program account
// is created as executable.
func (h *Host) RegisterProgram(programID solana.PublicKey, program Program) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.programs[programID] = program
	h.accounts[programID] = Account{
		Owner:      solana.BPFLoaderUpgradeableProgramID,
		Lamports:   1,
		Executable: true,
	}
}

// SetAccount stores an account, replacing any existing state.
func (h *Host) SetAccount(key solana.PublicKey, account Account) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accounts[key] = account.Clone()
}

// Account returns a copy of the stored account.
func (h *Host) Account(key solana.PublicKey) (Account, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	acct, ok := h.accounts[key]
	if !ok {
		return Account{}, false
	}
	return acct.Clone(), true
}

// ExecuteTransaction runs the instructions in order on behalf of the given signers.
// Either every instruction succeeds and all changes are committed, or the first
// failure is returned and no change is kept. The receipt is returned in both cases.
func (h *Host) ExecuteTransaction(ctx context.Context, signers []solana.PublicKey, instructions ...solana.Instruction) (*Receipt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx := &transaction{
		host:    h,
		working: make(map[solana.PublicKey]*Account),
		signers: make(map[solana.PublicKey]bool, len(signers)),
		receipt: &Receipt{},
	}
	for _, s := range signers {
		tx.signers[s] = true
	}

	for i, ix := range instructions {
		if err := tx.executeTopLevel(ctx, ix); err != nil {
			h.GetLogger().Debug("transaction rolled back", "instruction", i, "error", err)
			return tx.receipt, err
		}
	}

	for key, acct := range tx.working {
		h.accounts[key] = *acct
	}
	h.GetLogger().Debug("transaction committed", "instructions", len(instructions), "accounts", len(tx.working))
	return tx.receipt, nil
}

// transaction is the execution context of one ExecuteTransaction call.
// It implements Invoker for the programs it runs.
type transaction struct {
	host    *Host
	working map[solana.PublicKey]*Account
	signers map[solana.PublicKey]bool
	depth   int
	receipt *Receipt
}

// load returns the working copy of an account, creating it from stored state
// on first use. Unknown keys load as empty system-owned accounts.
func (tx *transaction) load(key solana.PublicKey) *Account {
	if acct, ok := tx.working[key]; ok {
		return acct
	}
	acct := Account{Owner: solana.SystemProgramID}
	if stored, ok := tx.host.accounts[key]; ok {
		acct = stored.Clone()
	}
	tx.working[key] = &acct
	return &acct
}

func (tx *transaction) executeTopLevel(ctx context.Context, ix solana.Instruction) error {
	programID := ix.ProgramID()

	metas := ix.Accounts()
	infos := make([]*AccountInfo, 0, len(metas))
	for _, m := range metas {
		if m.IsSigner && !tx.signers[m.PublicKey] {
			return NewProgramError(programID, InstructionErrorMissingRequiredSignature)
		}
		acct := tx.load(m.PublicKey)
		infos = append(infos, &AccountInfo{
			Key:        m.PublicKey,
			Owner:      acct.Owner,
			Lamports:   acct.Lamports,
			Data:       acct.Data,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Executable: acct.Executable,
		})
	}

	data, err := ix.Data()
	if err != nil {
		return NewProgramError(programID, InstructionErrorInvalidInstructionData)
	}
	return tx.call(ctx, programID, infos, data)
}

// Invoke implements Invoker. The callee receives views of the caller's accounts
// with the privileges named in the instruction's metas, which may not exceed
// the privileges the caller itself holds.
func (tx *transaction) Invoke(ctx context.Context, ix solana.Instruction, accounts []*AccountInfo) error {
	programID := ix.ProgramID()

	programInfo, ok := FindAccount(accounts, programID)
	if !ok {
		return NewProgramError(programID, InstructionErrorMissingAccount)
	}
	if !programInfo.Executable {
		return NewProgramError(programID, InstructionErrorAccountNotExecutable)
	}

	tx.sync(accounts)

	metas := ix.Accounts()
	callee := make([]*AccountInfo, 0, len(metas))
	for _, m := range metas {
		caller, ok := FindAccount(accounts, m.PublicKey)
		if !ok {
			return NewProgramError(programID, InstructionErrorMissingAccount)
		}
		if (m.IsSigner && !caller.IsSigner) || (m.IsWritable && !caller.IsWritable) {
			return NewProgramError(programID, InstructionErrorPrivilegeEscalation)
		}
		acct := tx.load(m.PublicKey)
		callee = append(callee, &AccountInfo{
			Key:        m.PublicKey,
			Owner:      acct.Owner,
			Lamports:   acct.Lamports,
			Data:       acct.Data,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Executable: acct.Executable,
		})
	}

	data, err := ix.Data()
	if err != nil {
		return NewProgramError(programID, InstructionErrorInvalidInstructionData)
	}
	if err := tx.call(ctx, programID, callee, data); err != nil {
		return err
	}

	for _, info := range accounts {
		if acct, ok := tx.working[info.Key]; ok {
			info.Lamports = acct.Lamports
		}
	}
	return nil
}

// Log implements ProgramLogger.
func (tx *transaction) Log(format string, args ...any) {
	tx.receipt.Logs = append(tx.receipt.Logs, "Program log: "+fmt.Sprintf(format, args...))
}

func (tx *transaction) call(ctx context.Context, programID solana.PublicKey, infos []*AccountInfo, data []byte) error {
	program, ok := tx.host.programs[programID]
	if !ok {
		return NewProgramError(programID, InstructionErrorUnsupportedProgramID)
	}
	if tx.depth >= MaxInstructionStackDepth {
		return NewProgramError(programID, InstructionErrorCallDepth)
	}

	writable := make(map[solana.PublicKey]bool)
	for _, info := range infos {
		if info.IsWritable {
			writable[info.Key] = true
		}
	}
	readonly := make(map[solana.PublicKey][]byte)
	for _, info := range infos {
		if !writable[info.Key] {
			readonly[info.Key] = bytes.Clone(info.Data)
		}
	}

	tx.depth++
	tx.receipt.Logs = append(tx.receipt.Logs, fmt.Sprintf("Program %s invoke [%d]", programID, tx.depth))
	err := program.Process(ctx, tx, programID, infos, data)
	tx.depth--

	if err == nil {
		for key, before := range readonly {
			if !bytes.Equal(before, tx.working[key].Data) {
				err = NewProgramError(programID, InstructionErrorReadonlyDataModified)
				break
			}
		}
	}
	if err != nil {
		tx.receipt.Logs = append(tx.receipt.Logs, fmt.Sprintf("Program %s failed: %s", programID, failureReason(err)))
		return err
	}

	tx.sync(infos)
	tx.receipt.Logs = append(tx.receipt.Logs, fmt.Sprintf("Program %s success", programID))
	return nil
}

// sync copies lamport changes from writable views into the working state.
func (tx *transaction) sync(infos []*AccountInfo) {
	for _, info := range infos {
		if !info.IsWritable {
			continue
		}
		if acct, ok := tx.working[info.Key]; ok {
			acct.Lamports = info.Lamports
		}
	}
}

func failureReason(err error) string {
	if pe, ok := err.(*ProgramError); ok {
		if pe.Kind == InstructionErrorCustom {
			return fmt.Sprintf("custom program error: 0x%x", pe.Code)
		}
		return string(pe.Kind)
	}
	return err.Error()
}
