package inventory

import "context"

// Service exposes the question bank outside of a round transaction
type Service interface {
	// GetBank returns the bank with per-value availability
	GetBank(ctx context.Context, input *GetBankInput) (*GetBankOutput, error)

	// ResetBank clears every usage flag
	ResetBank(ctx context.Context, input *ResetBankInput) (*GetBankOutput, error)
}
