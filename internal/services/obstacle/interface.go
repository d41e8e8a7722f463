package obstacle

import "context"

// Service defines the obstacle round engine
type Service interface {
	// Execute validates and applies one command atomically
	Execute(ctx context.Context, input *ExecuteInput) (*StateOutput, error)

	// GetState reads the round without taking part in any transaction
	GetState(ctx context.Context, input *GetStateInput) (*StateOutput, error)
}
