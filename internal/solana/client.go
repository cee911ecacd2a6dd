package solana

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/lugondev/go-swaprelay/internal/runtime"
)

// Client wraps the Solana RPC client
type Client struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// SimulationResult is the outcome of a simulated transaction.
type SimulationResult struct {
	// Err is the transaction error reported by the node, nil on success.
	Err   any
	Logs  []string
	Units uint64
}

// NewClient creates a new Solana client. An empty commitment means confirmed.
func NewClient(endpoint string, commitment string) *Client {
	c := rpc.CommitmentType(commitment)
	if c == "" {
		c = rpc.CommitmentConfirmed
	}
	return &Client{
		rpc:        rpc.New(endpoint),
		commitment: c,
	}
}

// GetLatestBlockhash returns the latest blockhash
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return result.Value.Blockhash, nil
}

// GetAccounts fetches the accounts in one request. The result is aligned with
// keys; an account that does not exist is nil.
func (c *Client) GetAccounts(ctx context.Context, keys []solana.PublicKey) ([]*runtime.Account, error) {
	result, err := c.rpc.GetMultipleAccountsWithOpts(ctx, keys, &rpc.GetMultipleAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	if len(result.Value) != len(keys) {
		return nil, fmt.Errorf("failed to get accounts: expected %d results, got %d", len(keys), len(result.Value))
	}

	accounts := make([]*runtime.Account, len(keys))
	for i, acct := range result.Value {
		if acct == nil {
			continue
		}
		accounts[i] = &runtime.Account{
			Owner:      acct.Owner,
			Lamports:   acct.Lamports,
			Data:       acct.Data.GetBinary(),
			Executable: acct.Executable,
		}
	}
	return accounts, nil
}

// NewTransaction builds a transaction paid by wallet and signs it.
func (c *Client) NewTransaction(ctx context.Context, wallet *Wallet, instructions ...solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := c.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(wallet.PublicKey()))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	if _, err := tx.Sign(wallet.Signer); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

// SimulateTransaction runs tx against the node without submitting it.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulationResult, error) {
	out, err := c.rpc.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:  true,
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to simulate transaction: %w", err)
	}

	result := &SimulationResult{
		Err:  out.Value.Err,
		Logs: out.Value.Logs,
	}
	if out.Value.UnitsConsumed != nil {
		result.Units = *out.Value.UnitsConsumed
	}
	return result, nil
}

// SendTransaction sends a transaction
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.rpc.Close()
}
