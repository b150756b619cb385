// internal/model/transaction.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Transaction は収入・支出の記録を表します
type Transaction struct {
	TransactionID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"transaction_id"`
	UserDocument  string          `gorm:"not null;index" json:"user_document"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category      string          `gorm:"not null" json:"category"`
	Description   string          `json:"description"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"` // 論理削除用
}

func (Transaction) TableName() string {
	return "transactions"
}

// 取引作成リクエストDTO
type CreateTransactionRequest struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Category    string          `json:"category" validate:"required,min=1,max=50"`
	Description string          `json:"description" validate:"omitempty,max=255"`
	Date        *time.Time      `json:"date,omitempty"`
}

// 取引更新リクエストDTO
type UpdateTransactionRequest struct {
	Type        *string          `json:"type,omitempty" validate:"omitempty,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,min=1,max=50"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=255"`
	Date        *time.Time       `json:"date,omitempty"`
}
