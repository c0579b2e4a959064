package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/model"
)

// ParseProgramID converts a base58 program id, using fallback when empty.
func ParseProgramID(input string, fallback solana.PublicKey) (solana.PublicKey, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return fallback, nil
	}
	key, err := solana.PublicKeyFromBase58(input)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid program id: %s", input)
	}
	return key, nil
}

// ReadTransactions loads a transactions JSONL file. Sequences must be
// strictly increasing.
func ReadTransactions(path string) ([]model.TransactionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var txs []model.TransactionRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var tx model.TransactionRecord
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if n := len(txs); n > 0 && tx.Sequence <= txs[n-1].Sequence {
			return nil, fmt.Errorf("line %d: sequence %d not after %d", lineNo, tx.Sequence, txs[n-1].Sequence)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return txs, nil
}
