package runtime

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/model"
)

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
)

// SigningPayload is the message a signer covers:
// program || seq (LE) || timestamp (LE) || data || name 0x00 key ... in name order.
func SigningPayload(program solana.PublicKey, seq uint64, timestamp int64, data []byte, accounts map[string]solana.PublicKey) []byte {
	buf := make([]byte, 0, 48+len(data)+len(accounts)*48)
	buf = append(buf, program[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, seq)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(timestamp))
	buf = append(buf, data...)
	for _, name := range sortedNames(accounts) {
		key := accounts[name]
		buf = append(buf, name...)
		buf = append(buf, 0)
		buf = append(buf, key[:]...)
	}
	return buf
}

// Sign fills tx.Signer and tx.Signature using key.
func Sign(tx *model.TransactionRecord, key solana.PrivateKey) error {
	payload, err := recordPayload(*tx)
	if err != nil {
		return err
	}
	sig, err := key.Sign(payload)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	tx.Signer = key.PublicKey().String()
	tx.Signature = sig.String()
	return nil
}

// Verify checks tx.Signature against tx.Signer.
func Verify(tx model.TransactionRecord) error {
	if tx.Signature == "" {
		return ErrMissingSignature
	}
	signer, err := solana.PublicKeyFromBase58(tx.Signer)
	if err != nil {
		return fmt.Errorf("signer: %w", err)
	}
	sig, err := solana.SignatureFromBase58(tx.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	payload, err := recordPayload(tx)
	if err != nil {
		return err
	}
	if !sig.Verify(signer, payload) {
		return ErrInvalidSignature
	}
	return nil
}

func recordPayload(tx model.TransactionRecord) ([]byte, error) {
	program, err := solana.PublicKeyFromBase58(tx.Program)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	data, err := hexutil.Decode(tx.Data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	accounts, err := ParseAccounts(tx.Accounts)
	if err != nil {
		return nil, err
	}
	return SigningPayload(program, tx.Sequence, tx.Timestamp, data, accounts), nil
}
