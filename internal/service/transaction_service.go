// internal/service/transaction_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"
	"fintrax_backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionService interface {
	CreateTransaction(ctx context.Context, userDocument string, req *model.CreateTransactionRequest) (*model.Transaction, error)
	GetTransaction(ctx context.Context, userDocument string, transactionID uuid.UUID) (*model.Transaction, error)
	ListTransactions(ctx context.Context, userDocument string) ([]*model.Transaction, error)
	UpdateTransaction(ctx context.Context, userDocument string, transactionID uuid.UUID, req *model.UpdateTransactionRequest) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, userDocument string, transactionID uuid.UUID) error
}

type transactionService struct {
	db              *gorm.DB
	transactionRepo repository.TransactionRepository
	logger          *slog.Logger
}

func NewTransactionService(db *gorm.DB, transactionRepo repository.TransactionRepository, logger *slog.Logger) TransactionService {
	return &transactionService{
		db:              db,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

func (s *transactionService) CreateTransaction(ctx context.Context, userDocument string, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	logger := middleware.GetLogger(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, model.NewAppError("INVALID_INPUT", "金額は0より大きい値を指定してください", "amount", model.ErrInvalidInput)
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	transaction := &model.Transaction{
		TransactionID: uuid.New(),
		UserDocument:  userDocument,
		Type:          model.TransactionType(req.Type),
		Amount:        req.Amount,
		Category:      req.Category,
		Description:   req.Description,
		Date:          date,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.transactionRepo.Create(ctx, tx, transaction)
	})
	if err != nil {
		logger.Error("Error creating transaction", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "取引の作成に失敗しました", "", err)
	}

	return transaction, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, userDocument string, transactionID uuid.UUID) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.FindByID(ctx, s.db, userDocument, transactionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "指定された取引が見つかりません", "transaction_id", model.ErrNotFound)
		}
		logger := middleware.GetLogger(ctx)
		logger.Error("Error finding transaction", "error", err, "transaction_id", transactionID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	return transaction, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, userDocument string) ([]*model.Transaction, error) {
	transactions, err := s.transactionRepo.FindByUser(ctx, s.db, userDocument)
	if err != nil {
		logger := middleware.GetLogger(ctx)
		logger.Error("Error listing transactions", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	if transactions == nil {
		transactions = make([]*model.Transaction, 0)
	}
	return transactions, nil
}

// UpdateTransaction は指定されたフィールドのみ更新します (部分更新)
func (s *transactionService) UpdateTransaction(ctx context.Context, userDocument string, transactionID uuid.UUID, req *model.UpdateTransactionRequest) (*model.Transaction, error) {
	logger := middleware.GetLogger(ctx)

	updates := make(map[string]interface{})
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, model.NewAppError("INVALID_INPUT", "金額は0より大きい値を指定してください", "amount", model.ErrInvalidInput)
		}
		updates["amount"] = *req.Amount
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Date != nil {
		updates["date"] = req.Date.UTC()
	}
	if len(updates) == 0 {
		return nil, model.NewAppError("INVALID_INPUT", "更新するフィールドが指定されていません", "", model.ErrInvalidInput)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.transactionRepo.Update(ctx, tx, userDocument, transactionID, updates)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.NewAppError("NOT_FOUND", "指定された取引が見つかりません", "transaction_id", model.ErrNotFound)
		}
		logger.Error("Error updating transaction", "error", err, "transaction_id", transactionID.String())
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "取引の更新に失敗しました", "", err)
	}

	return s.GetTransaction(ctx, userDocument, transactionID)
}

func (s *transactionService) DeleteTransaction(ctx context.Context, userDocument string, transactionID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.transactionRepo.Delete(ctx, tx, userDocument, transactionID)
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewAppError("NOT_FOUND", "指定された取引が見つかりません", "transaction_id", model.ErrNotFound)
		}
		logger.Error("Error deleting transaction", "error", err, "transaction_id", transactionID.String())
		return model.NewAppError("INTERNAL_SERVER_ERROR", "取引の削除に失敗しました", "", err)
	}
	return nil
}
