// internal/service/evaluator.go
package service

import (
	"context"
	"sort"
	"time"

	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"
	"fintrax_backend/internal/repository"

	"gorm.io/gorm"
)

// 長期目標とみなす作成から完了までの最低日数
const longTermGoalDays = 180

// 週をアクティブとみなす取引日数の下限
const engagedWeekMinDays = 3

// RuleFunc は1つのルール種別の現在値を算出します。
// 実績定義ごとに評価され、エラーはその定義の評価だけを失敗させる。
type RuleFunc func(ctx context.Context, db *gorm.DB, userDocument string) (int, error)

// Evaluator はルール種別から進捗値の算出方法を引くレジストリ。
// 未知のルール種別は 0 を返して評価自体は継続する (fail-open)。
type Evaluator struct {
	rules map[model.RuleType]RuleFunc
}

func NewEvaluator(
	transactionRepo repository.TransactionRepository,
	goalRepo repository.GoalRepository,
	enrollmentRepo repository.EnrollmentRepository,
) *Evaluator {
	e := &Evaluator{rules: make(map[model.RuleType]RuleFunc)}

	e.Register(model.RuleCompletedCourses, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		count, err := enrollmentRepo.CountCompleted(ctx, db, doc)
		return int(count), err
	})
	e.Register(model.RuleActiveGoals, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		count, err := goalRepo.CountByStatus(ctx, db, doc, model.GoalActive)
		return int(count), err
	})
	e.Register(model.RuleCompletedGoals, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		count, err := goalRepo.CountByStatus(ctx, db, doc, model.GoalCompleted)
		return int(count), err
	})
	e.Register(model.RuleLongTermGoalsCompleted, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		activities, err := goalRepo.ListActivity(ctx, db, doc)
		if err != nil {
			return 0, err
		}
		return countLongTermCompleted(activities), nil
	})
	e.Register(model.RuleConsecutiveActiveMonths, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		activities, err := goalRepo.ListActivity(ctx, db, doc)
		if err != nil {
			return 0, err
		}
		return longestConsecutiveMonths(activities), nil
	})
	e.Register(model.RuleWeeklyEngagement, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		dates, err := transactionRepo.ListDates(ctx, db, doc)
		if err != nil {
			return 0, err
		}
		return countEngagedWeeks(dates), nil
	})
	// monthly_summary のデータソースは未提供。進捗行は作るが常に0。
	e.Register(model.RuleMonthlySummary, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		return 0, nil
	})
	e.Register(model.RuleTransactionsRecorded, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		count, err := transactionRepo.CountByUser(ctx, db, doc)
		return int(count), err
	})

	return e
}

func (e *Evaluator) Register(ruleType model.RuleType, fn RuleFunc) {
	e.rules[ruleType] = fn
}

func (e *Evaluator) Evaluate(ctx context.Context, db *gorm.DB, ruleType model.RuleType, userDocument string) (int, error) {
	fn, ok := e.rules[ruleType]
	if !ok {
		logger := middleware.GetLogger(ctx)
		logger.Warn("Unknown achievement rule type, treating progress as zero", "rule_type", string(ruleType))
		return 0, nil
	}
	return fn(ctx, db, userDocument)
}

// countLongTermCompleted は作成から完了まで一定日数以上かかった完了目標を数えます
func countLongTermCompleted(activities []model.GoalActivity) int {
	count := 0
	for _, a := range activities {
		if a.Status != model.GoalCompleted || a.CompletedAt == nil {
			continue
		}
		if a.CompletedAt.Sub(a.CreatedAt) >= longTermGoalDays*24*time.Hour {
			count++
		}
	}
	return count
}

// monthIndex は年月をまたいだ連続判定のために月を通算値に潰す
func monthIndex(t time.Time) int {
	u := t.UTC()
	return u.Year()*12 + int(u.Month()) - 1
}

// longestConsecutiveMonths は目標の作成月・完了月 (UTC) の集合から、
// 連続するカレンダー月の最長の並びの長さを返します。
func longestConsecutiveMonths(activities []model.GoalActivity) int {
	monthSet := make(map[int]struct{})
	for _, a := range activities {
		monthSet[monthIndex(a.CreatedAt)] = struct{}{}
		if a.CompletedAt != nil {
			monthSet[monthIndex(*a.CompletedAt)] = struct{}{}
		}
	}
	if len(monthSet) == 0 {
		return 0
	}

	months := make([]int, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Ints(months)

	longest, run := 1, 1
	for i := 1; i < len(months); i++ {
		if months[i] == months[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// countEngagedWeeks は取引日 (UTC) をISO週に束ね、
// 3日以上異なる日に取引があった週の数を返します。
func countEngagedWeeks(dates []time.Time) int {
	type weekKey struct {
		year int
		week int
	}
	daysByWeek := make(map[weekKey]map[string]struct{})
	for _, d := range dates {
		u := d.UTC()
		year, week := u.ISOWeek()
		key := weekKey{year: year, week: week}
		if daysByWeek[key] == nil {
			daysByWeek[key] = make(map[string]struct{})
		}
		daysByWeek[key][u.Format("2006-01-02")] = struct{}{}
	}

	count := 0
	for _, days := range daysByWeek {
		if len(days) >= engagedWeekMinDays {
			count++
		}
	}
	return count
}
