package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"ammGovernance/internal/replay"
	"ammGovernance/internal/runtime"
)

func runSign(cmd *cobra.Command, _ []string) error {
	keyPath, _ := cmd.Flags().GetString("key")
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	if keyPath == "" || in == "" || out == "" {
		return fmt.Errorf("key, in and out are required")
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(keyPath)
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}

	txs, err := replay.ReadTransactions(in)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	file, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	for i := range txs {
		if err := runtime.Sign(&txs[i], key); err != nil {
			return fmt.Errorf("sequence %d: %w", txs[i].Sequence, err)
		}
		if err := enc.Encode(txs[i]); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return writer.Flush()
}
