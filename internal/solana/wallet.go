package solana

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Wallet is the keypair that signs and pays for swaps.
type Wallet struct {
	privateKey solana.PrivateKey
}

// WalletFromPrivateKey creates a wallet from an existing private key
func WalletFromPrivateKey(pk solana.PrivateKey) *Wallet {
	return &Wallet{
		privateKey: pk,
	}
}

// WalletFromBase58 creates a wallet from a base58-encoded private key
func WalletFromBase58(key string) (*Wallet, error) {
	pk, err := solana.PrivateKeyFromBase58(key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Wallet{privateKey: pk}, nil
}

// WalletFromFile loads a wallet from a JSON keypair file (Solana CLI format)
func WalletFromFile(path string) (*Wallet, error) {
	pk, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair: %w", err)
	}
	return &Wallet{privateKey: pk}, nil
}

// LoadWallet reads a keypair file if source names one, and otherwise treats
// source as a base58 private key.
func LoadWallet(source string) (*Wallet, error) {
	if _, err := os.Stat(source); err == nil {
		return WalletFromFile(source)
	}
	return WalletFromBase58(source)
}

// PublicKey returns the wallet's public key
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.privateKey.PublicKey()
}

// PrivateKey returns the wallet's private key
func (w *Wallet) PrivateKey() solana.PrivateKey {
	return w.privateKey
}

// Signer returns the private key for key if it belongs to this wallet.
// It has the shape expected by solana.Transaction.Sign.
func (w *Wallet) Signer(key solana.PublicKey) *solana.PrivateKey {
	if !key.Equals(w.PublicKey()) {
		return nil
	}
	return &w.privateKey
}

// String returns the public key as a string
func (w *Wallet) String() string {
	return w.PublicKey().String()
}
