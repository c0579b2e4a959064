package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"ammGovernance/internal/amm"
	"ammGovernance/internal/config"
	"ammGovernance/internal/governance"
	"ammGovernance/internal/ledger"
	"ammGovernance/internal/model"
	"ammGovernance/internal/programerr"
	"ammGovernance/internal/replay"
	"ammGovernance/internal/runtime"
)

type inspectedAccount struct {
	Address string      `json:"address"`
	Owner   string      `json:"owner,omitempty"`
	Kind    string      `json:"kind"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type proposalView struct {
	model.Proposal
	Title       string `json:"title"`
	Description string `json:"description"`
	VotingEnd   *int64 `json:"voting_end,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadInspect(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, "")
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.All && len(cfg.Addresses) == 0 {
		return fmt.Errorf("address list or --all is required")
	}

	ammID, err := replay.ParseProgramID(cfg.AMMProgramID, amm.DefaultProgramID)
	if err != nil {
		return err
	}
	govID, err := replay.ParseProgramID(cfg.GovernanceProgramID, governance.DefaultProgramID)
	if err != nil {
		return err
	}

	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	rt := runtime.New(runtime.Config{AMMProgramID: ammID, GovernanceProgramID: govID}, store, nil, logger)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if cfg.All {
		var keys []solana.PublicKey
		if err := store.ForEach(func(key solana.PublicKey, _ ledger.Account) error {
			keys = append(keys, key)
			return nil
		}); err != nil {
			return err
		}
		for _, key := range keys {
			if err := enc.Encode(describeAccount(rt, key)); err != nil {
				return err
			}
		}
	} else {
		for _, raw := range cfg.Addresses {
			key, err := solana.PublicKeyFromBase58(raw)
			if err != nil {
				return fmt.Errorf("invalid address %s: %w", raw, err)
			}
			if err := enc.Encode(describeAccount(rt, key)); err != nil {
				return err
			}
		}
	}

	if last, ok, err := store.LastSequence(); err == nil && ok {
		fmt.Fprintf(os.Stderr, "last sequence: %d\n", last)
	}
	return nil
}

func describeAccount(rt *runtime.Runtime, key solana.PublicKey) inspectedAccount {
	out := inspectedAccount{Address: key.String()}
	txn := rt.Store().Begin()
	defer txn.Discard()

	acc, ok, err := txn.Get(key)
	if err != nil {
		out.Kind, out.Error = "unknown", err.Error()
		return out
	}
	if !ok {
		out.Kind = "missing"
		return out
	}
	out.Owner = acc.Owner.String()

	var data interface{}
	switch {
	case acc.Owner.Equals(rt.AMM().ProgramID()):
		out.Kind = "pool"
		data, err = rt.AMM().LoadPool(txn, key)
	case acc.Owner.Equals(rt.Governance().ProgramID()):
		out.Kind, data, err = describeGovernance(rt, txn, key)
	case acc.Owner.Equals(rt.Tokens().ID()):
		out.Kind, data, err = describeToken(rt, txn, key)
	default:
		out.Kind = "foreign"
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Data = data
	return out
}

func describeGovernance(rt *runtime.Runtime, txn *ledger.Txn, key solana.PublicKey) (string, interface{}, error) {
	proposal, err := rt.Governance().LoadProposal(txn, key)
	if err == nil {
		view := proposalView{
			Proposal:    proposal,
			Title:       proposal.TitleText(),
			Description: proposal.DescriptionText(),
		}
		if end, endErr := proposal.VotingEnd(); endErr == nil {
			view.VotingEnd = &end
		}
		return "proposal", view, nil
	}
	if !errors.Is(err, programerr.ErrAccountDiscriminatorMismatch) {
		return "proposal", nil, err
	}
	var record model.VoteRecord
	if err := ledger.Load(txn, key, rt.Governance().ProgramID(), &record); err != nil {
		return "vote_record", nil, err
	}
	return "vote_record", record, nil
}

func describeToken(rt *runtime.Runtime, txn *ledger.Txn, key solana.PublicKey) (string, interface{}, error) {
	mint, err := rt.Tokens().Mint(txn, key)
	if err == nil {
		return "mint", mint, nil
	}
	if !errors.Is(err, programerr.ErrAccountDiscriminatorMismatch) {
		return "mint", nil, err
	}
	account, err := rt.Tokens().Account(txn, key)
	if err != nil {
		return "token_account", nil, err
	}
	return "token_account", account, nil
}
