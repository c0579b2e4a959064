package model

// ExecutionError records a rejected transaction.
type ExecutionError struct {
	Sequence    uint64  `json:"sequence"`
	Program     string  `json:"program"`
	Instruction string  `json:"instruction,omitempty"`
	Signer      string  `json:"signer"`
	Code        *uint32 `json:"code,omitempty"`
	Name        string  `json:"name,omitempty"`
	Error       string  `json:"error"`
}
