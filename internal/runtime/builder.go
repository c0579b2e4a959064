package runtime

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"

	"ammGovernance/internal/model"
)

// NewTransaction builds an unsigned transaction record for instruction name.
// accounts is one of the tagged account structs.
func NewTransaction(program solana.PublicKey, seq uint64, name string, args, accounts interface{}) (model.TransactionRecord, error) {
	data, err := EncodeInstruction(name, args)
	if err != nil {
		return model.TransactionRecord{}, err
	}
	return model.TransactionRecord{
		Sequence: seq,
		Program:  program.String(),
		Data:     hexutil.Encode(data),
		Accounts: AccountMap(accounts),
	}, nil
}
