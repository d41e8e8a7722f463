package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/datkingvn/pvoil-sub000/internal/common/gameerr"
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"go.uber.org/zap"
)

type service struct {
	store  document.Repository
	logger *zap.Logger
}

// New creates a new inventory service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{store: cfg.Store, logger: logger.Named("inventory")}, nil
}

// GetBank reads the bank
func (s *service) GetBank(ctx context.Context, input *GetBankInput) (*GetBankOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	bank := &models.QuestionBank{Items: []*models.QuestionBankItem{}}
	if _, err := s.store.Get(ctx, &document.GetInput{Key: BankKey(input.ShowID), Dest: bank}); err != nil {
		return nil, err
	}

	return summarize(bank), nil
}

// ResetBank clears all usage flags in one transaction
func (s *service) ResetBank(ctx context.Context, input *ResetBankInput) (*GetBankOutput, error) {
	if input == nil || input.ShowID == "" {
		return nil, fmt.Errorf("%w: show id is required", gameerr.ErrInvalidInput)
	}

	var bank *models.QuestionBank
	err := s.store.Transact(ctx, &document.TransactInput{
		Keys: []string{BankKey(input.ShowID)},
		Fn: func(tx document.Tx) error {
			var err error
			bank, err = Load(tx, input.ShowID)
			if err != nil {
				return err
			}
			Reset(bank)
			return Save(tx, input.ShowID, bank)
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("question bank reset", zap.String("show_id", input.ShowID), zap.Int("items", len(bank.Items)))

	return summarize(bank), nil
}

func summarize(bank *models.QuestionBank) *GetBankOutput {
	if bank.Items == nil {
		bank.Items = []*models.QuestionBankItem{}
	}
	return &GetBankOutput{
		Bank:      bank,
		Available: Available(bank),
		Used:      bank.UsedCount(),
	}
}
