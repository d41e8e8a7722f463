package document

import (
	"context"
)

// Repository defines versioned JSON document persistence with compare-and-set
type Repository interface {
	// Get reads a document into input.Dest
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Transact runs input.Fn against a consistent view of input.Keys and
	// commits everything it stored atomically, or nothing at all
	Transact(ctx context.Context, input *TransactInput) error

	// Delete removes documents
	Delete(ctx context.Context, input *DeleteInput) error
}

// Tx is the view of the watched documents handed to a transaction function
type Tx interface {
	// Load decodes the document at key into dest and reports whether it exists
	Load(key string, dest any) (bool, error)

	// Store queues value to be written at key when the transaction commits
	Store(key string, value any) error
}
