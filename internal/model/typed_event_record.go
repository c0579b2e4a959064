package model

import "encoding/json"

// TypedEventRecord is the JSON representation used for aggregation.
type TypedEventRecord struct {
	Sequence    uint64          `json:"sequence"`
	Signature   string          `json:"signature,omitempty"`
	Program     string          `json:"program"`
	Instruction string          `json:"instruction"`
	Address     string          `json:"address"`
	EventName   string          `json:"event_name"`
	Timestamp   int64           `json:"timestamp"`
	Decoded     json.RawMessage `json:"decoded"`
	PoolMeta    *PoolMeta       `json:"pool_meta,omitempty"`
}
