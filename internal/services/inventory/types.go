package inventory

import (
	"github.com/datkingvn/pvoil-sub000/internal/models"
	"github.com/datkingvn/pvoil-sub000/internal/repositories/document"
	"go.uber.org/zap"
)

// Config holds configuration for the inventory service
type Config struct {
	Store  document.Repository
	Logger *zap.Logger
}

type GetBankInput struct {
	ShowID string
}

type ResetBankInput struct {
	ShowID string
}

type GetBankOutput struct {
	Bank      *models.QuestionBank
	Available map[int]int
	Used      int
}
