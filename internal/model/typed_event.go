package model

// TypedEvent is an executed instruction outcome enriched with metadata.
type TypedEvent struct {
	Sequence    uint64      `json:"sequence"`
	Signature   string      `json:"signature,omitempty"`
	Program     string      `json:"program"`
	Instruction string      `json:"instruction"`
	Address     string      `json:"address"`
	EventName   string      `json:"event_name"`
	Timestamp   int64       `json:"timestamp"`
	Decoded     interface{} `json:"decoded"`
	PoolMeta    *PoolMeta   `json:"pool_meta,omitempty"`
}

// Outcome is the event produced by one successful instruction.
type Outcome struct {
	Address   string
	EventName string
	Data      interface{}
	PoolMeta  *PoolMeta
}
