// internal/model/goal.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// SavingsGoal は貯蓄目標を表します
type SavingsGoal struct {
	GoalID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"goal_id"`
	UserDocument  string          `gorm:"not null;index" json:"user_document"`
	Name          string          `gorm:"not null" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"current_amount"`
	Status        GoalStatus      `gorm:"not null;default:active;index" json:"status"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"` // 論理削除用
}

func (SavingsGoal) TableName() string {
	return "savings_goals"
}

// GoalActivity は実績評価用に必要な最小限の目標情報 (作成日・完了日・状態)
type GoalActivity struct {
	Status      GoalStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// 目標作成リクエストDTO
type CreateGoalRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=100"`
	TargetAmount decimal.Decimal `json:"target_amount" validate:"required"`
}

// 目標更新リクエストDTO
type UpdateGoalRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	TargetAmount *decimal.Decimal `json:"target_amount,omitempty"`
}

// 目標状態変更リクエストDTO
type ChangeGoalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active completed cancelled"`
}

// 入金・引き出しリクエストDTO
type GoalAmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
