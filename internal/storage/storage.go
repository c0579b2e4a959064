package storage

import "ammGovernance/internal/model"

// Storage defines a sink for executed instruction events.
type Storage interface {
	PutEventBatch(events []model.TypedEvent) error
}

// ErrorSink receives rejected transactions.
type ErrorSink interface {
	PutErrorBatch(errs []model.ExecutionError) error
}
