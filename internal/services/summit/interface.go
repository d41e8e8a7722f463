package summit

import "context"

// Service defines the summit round engine
type Service interface {
	// Execute validates and applies one command atomically
	Execute(ctx context.Context, input *ExecuteInput) (*StateOutput, error)

	// GetState reads the round, the teams and the bank availability
	GetState(ctx context.Context, input *GetStateInput) (*StateOutput, error)
}
