package model

import (
	"encoding/json"
)

// TransactionRecord is one signed instruction submitted to the runtime.
type TransactionRecord struct {
	Sequence  uint64            `json:"sequence"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Program   string            `json:"program"`
	Data      string            `json:"data"`
	Signer    string            `json:"signer"`
	Signature string            `json:"signature,omitempty"`
	Accounts  map[string]string `json:"accounts"`
}

// MarshalJSON ensures TransactionRecord is encoded with stable field names.
func (tr TransactionRecord) MarshalJSON() ([]byte, error) {
	type Alias TransactionRecord
	return json.Marshal(Alias(tr))
}

// UnmarshalJSON decodes a TransactionRecord from JSON.
func (tr *TransactionRecord) UnmarshalJSON(data []byte) error {
	type Alias TransactionRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Accounts == nil {
		a.Accounts = map[string]string{}
	}
	*tr = TransactionRecord(a)
	return nil
}
