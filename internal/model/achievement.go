// internal/model/achievement.go
package model

import (
	"time"
)

type AchievementCategory string

const (
	CategoryEducation    AchievementCategory = "education"
	CategorySavings      AchievementCategory = "savings"
	CategoryHabits       AchievementCategory = "habits"
	CategoryTransactions AchievementCategory = "transactions"
)

// RuleType は実績の進捗値をどのドメインクエリで算出するかを選択するタグ
type RuleType string

const (
	RuleCompletedCourses        RuleType = "completed_courses"
	RuleActiveGoals             RuleType = "active_goals"
	RuleCompletedGoals          RuleType = "completed_goals"
	RuleLongTermGoalsCompleted  RuleType = "long_term_goals_completed"
	RuleConsecutiveActiveMonths RuleType = "consecutive_active_months"
	RuleWeeklyEngagement        RuleType = "weekly_engagement"
	RuleMonthlySummary          RuleType = "monthly_summary" // データソース未提供のため常に0
	RuleTransactionsRecorded    RuleType = "transactions_recorded"
)

// AchievementDefinition は実績カタログの1行。運用側が管理し、実行時には読み取り専用。
type AchievementDefinition struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"not null" json:"name"`
	Description string              `gorm:"not null" json:"description"`
	Category    AchievementCategory `gorm:"not null;index" json:"category"`
	RuleType    RuleType            `gorm:"not null" json:"rule_type"`
	TargetValue int                 `gorm:"not null" json:"target_value"`
	XPReward    int                 `gorm:"not null;default:0" json:"xp_reward"`
	ImageURL    string              `json:"image_url"`
	Active      bool                `gorm:"not null;default:true;index" json:"-"`
}

func (AchievementDefinition) TableName() string {
	return "achievement_definitions"
}

// AchievementProgress はユーザーごとの実績進捗値。評価のたびにUpsertされる。
// (user_document, achievement_id) で一意。
type AchievementProgress struct {
	UserDocument  string    `gorm:"primaryKey" json:"user_document"`
	AchievementID uint      `gorm:"primaryKey" json:"achievement_id"`
	CurrentValue  int       `gorm:"not null;default:0" json:"current_value"`
	EvaluatedAt   time.Time `gorm:"not null" json:"evaluated_at"`
}

func (AchievementProgress) TableName() string {
	return "achievement_progress"
}

// UserAchievement は実績の解除状態。completed は false→true に一度だけ遷移する。
type UserAchievement struct {
	UserDocument  string    `gorm:"primaryKey" json:"user_document"`
	AchievementID uint      `gorm:"primaryKey" json:"achievement_id"`
	Completed     bool      `gorm:"not null;default:false" json:"completed"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

// --- レスポンスDTO ---

// AchievementView は一覧表示用の実績1件分 (定義 + ユーザー状態)
type AchievementView struct {
	ID              uint                `json:"id"`
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Category        AchievementCategory `json:"category"`
	TargetValue     int                 `json:"target_value"`
	XPReward        int                 `json:"xp_reward"`
	ImageURL        string              `json:"image_url"`
	Completed       bool                `json:"completed"`
	UnlockedAt      *time.Time          `json:"unlocked_at"`
	CurrentValue    int                 `json:"current_value"`
	ProgressPercent float64             `json:"progress_percent"`
}

// AchievementsByCategory はカテゴリ別にグループ化した実績一覧
type AchievementsByCategory struct {
	Education    []*AchievementView `json:"education"`
	Savings      []*AchievementView `json:"savings"`
	Habits       []*AchievementView `json:"habits"`
	Transactions []*AchievementView `json:"transactions"`
}

// AchievementStats はユーザーの実績統計
type AchievementStats struct {
	XPTotal       int `json:"xp_total"`
	UnlockedCount int `json:"unlocked_count"`
	TotalCount    int `json:"total_count"`
}

// UserAchievementsResponse は GET /achievements/{user_document} のレスポンスデータ
type UserAchievementsResponse struct {
	AchievementsByCategory AchievementsByCategory `json:"achievements_by_category"`
	Stats                  AchievementStats       `json:"stats"`
}

// UnlockedAchievement は1回の評価で新たに解除された実績
type UnlockedAchievement struct {
	AchievementID uint `json:"id"`
	XPAwarded     int  `json:"xp_awarded"`
}

// VerifyAchievementsRequest は POST /achievements/verify のリクエストボディ
type VerifyAchievementsRequest struct {
	UserDocument string `json:"user_document" validate:"required"`
}

// VerifyAchievementsResponse は verify のレスポンスデータ
type VerifyAchievementsResponse struct {
	NewlyUnlocked []UnlockedAchievement `json:"newly_unlocked"`
}

// AchievementHistoryEntry は解除履歴の1件分 (解除日時の降順で返す)
type AchievementHistoryEntry struct {
	AchievementID uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	XPReward      int       `json:"xp_reward"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
