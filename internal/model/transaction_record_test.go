package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTransactionRecordJSONRoundTrip(t *testing.T) {
	original := TransactionRecord{
		Sequence:  42,
		Timestamp: 1700000000,
		Program:   "FqzkXZdwYjurnUKetJCAvaUw5WAqbwzU6gZEwydeEfqS",
		Data:      "0xf8c69e91e17587c8",
		Signer:    "11111111111111111111111111111111",
		Accounts: map[string]string{
			"pool": "11111111111111111111111111111111",
		},
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded TransactionRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestTransactionRecordMissingAccounts(t *testing.T) {
	var decoded TransactionRecord
	if err := json.Unmarshal([]byte(`{"sequence":1,"program":"p","data":"0x"}`), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Accounts == nil {
		t.Fatalf("accounts should default to an empty map")
	}
}
