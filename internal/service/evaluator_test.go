// internal/service/evaluator_test.go
package service

import (
	"context"
	"testing"
	"time"

	"fintrax_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func timePtr(v time.Time) *time.Time {
	return &v
}

func Test_longestConsecutiveMonths(t *testing.T) {
	tests := []struct {
		name       string
		activities []model.GoalActivity
		want       int
	}{
		{
			name:       "正常系: 活動なしは0",
			activities: nil,
			want:       0,
		},
		{
			name: "正常系: 1か月だけの活動は1",
			activities: []model.GoalActivity{
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-03-10T12:00:00Z")},
			},
			want: 1,
		},
		{
			name: "正常系: 連続する3か月",
			activities: []model.GoalActivity{
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-01-15T00:00:00Z")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-02-01T00:00:00Z")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-03-31T23:59:59Z")},
			},
			want: 3,
		},
		{
			name: "正常系: 途切れた場合は最長の並びを返す",
			activities: []model.GoalActivity{
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-01-01T00:00:00Z")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-02-01T00:00:00Z")},
				// 3月は活動なし
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-04-01T00:00:00Z")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-05-01T00:00:00Z")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-06-01T00:00:00Z")},
			},
			want: 3,
		},
		{
			name: "正常系: 年またぎの連続 (12月→1月)",
			activities: []model.GoalActivity{
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2024-12-15T00:00:00Z")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-01-15T00:00:00Z")},
			},
			want: 2,
		},
		{
			name: "正常系: 完了日も活動月として数える",
			activities: []model.GoalActivity{
				{
					Status:      model.GoalCompleted,
					CreatedAt:   mustTime(t, "2025-01-10T00:00:00Z"),
					CompletedAt: timePtr(mustTime(t, "2025-02-20T00:00:00Z")),
				},
			},
			want: 2,
		},
		{
			name: "正常系: 同月の複数活動は1か月として数える",
			activities: []model.GoalActivity{
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-05-01T00:00:00Z")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-05-20T00:00:00Z")},
			},
			want: 1,
		},
		{
			name: "境界値: UTC変換で月が変わるケース",
			activities: []model.GoalActivity{
				// UTCでは2025-02-28T23:00:00Z (2月扱い)
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-03-01T08:00:00+09:00")},
				{Status: model.GoalActive, CreatedAt: mustTime(t, "2025-03-15T00:00:00Z")},
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, longestConsecutiveMonths(tt.activities))
		})
	}
}

func Test_countEngagedWeeks(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{
			name:  "正常系: 取引なしは0",
			dates: nil,
			want:  0,
		},
		{
			name: "正常系: 週2日だけでは数えない",
			dates: []time.Time{
				mustTime(t, "2025-06-02T10:00:00Z"), // 月曜
				mustTime(t, "2025-06-03T10:00:00Z"), // 火曜
			},
			want: 0,
		},
		{
			name: "正常系: 週3日で1週間と数える",
			dates: []time.Time{
				mustTime(t, "2025-06-02T10:00:00Z"),
				mustTime(t, "2025-06-03T10:00:00Z"),
				mustTime(t, "2025-06-04T10:00:00Z"),
			},
			want: 1,
		},
		{
			name: "正常系: 同日の複数取引は1日として数える",
			dates: []time.Time{
				mustTime(t, "2025-06-02T08:00:00Z"),
				mustTime(t, "2025-06-02T12:00:00Z"),
				mustTime(t, "2025-06-02T18:00:00Z"),
			},
			want: 0,
		},
		{
			name: "正常系: 2週間それぞれ3日以上",
			dates: []time.Time{
				mustTime(t, "2025-06-02T00:00:00Z"),
				mustTime(t, "2025-06-04T00:00:00Z"),
				mustTime(t, "2025-06-06T00:00:00Z"),
				mustTime(t, "2025-06-09T00:00:00Z"),
				mustTime(t, "2025-06-10T00:00:00Z"),
				mustTime(t, "2025-06-11T00:00:00Z"),
			},
			want: 2,
		},
		{
			name: "境界値: ISO週は年をまたいでも同じ週にまとめる",
			dates: []time.Time{
				// 2024-12-30(月)〜2025-01-01(水) は同じISO週 (2025-W01)
				mustTime(t, "2024-12-30T10:00:00Z"),
				mustTime(t, "2024-12-31T10:00:00Z"),
				mustTime(t, "2025-01-01T10:00:00Z"),
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countEngagedWeeks(tt.dates))
		})
	}
}

func Test_countLongTermCompleted(t *testing.T) {
	created := mustTime(t, "2025-01-01T00:00:00Z")

	tests := []struct {
		name       string
		activities []model.GoalActivity
		want       int
	}{
		{
			name: "正常系: 180日以上かけて完了した目標を数える",
			activities: []model.GoalActivity{
				{Status: model.GoalCompleted, CreatedAt: created, CompletedAt: timePtr(created.AddDate(0, 0, 200))},
			},
			want: 1,
		},
		{
			name: "境界値: ちょうど180日は数える",
			activities: []model.GoalActivity{
				{Status: model.GoalCompleted, CreatedAt: created, CompletedAt: timePtr(created.AddDate(0, 0, 180))},
			},
			want: 1,
		},
		{
			name: "正常系: 180日未満は数えない",
			activities: []model.GoalActivity{
				{Status: model.GoalCompleted, CreatedAt: created, CompletedAt: timePtr(created.AddDate(0, 0, 179))},
			},
			want: 0,
		},
		{
			name: "正常系: 未完了の目標は数えない",
			activities: []model.GoalActivity{
				{Status: model.GoalActive, CreatedAt: created},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countLongTermCompleted(tt.activities))
		})
	}
}

func Test_Evaluator_Evaluate_UnknownRule(t *testing.T) {
	evaluator := NewEvaluator(nil, nil, nil)

	// 未知のルール種別はエラーにせず0を返す
	value, err := evaluator.Evaluate(context.Background(), nil, model.RuleType("not_a_rule"), "12345678")
	assert.NoError(t, err)
	assert.Equal(t, 0, value)
}

func Test_Evaluator_Register_Overrides(t *testing.T) {
	evaluator := NewEvaluator(nil, nil, nil)
	evaluator.Register(model.RuleMonthlySummary, func(ctx context.Context, db *gorm.DB, doc string) (int, error) {
		return 7, nil
	})

	value, err := evaluator.Evaluate(context.Background(), nil, model.RuleMonthlySummary, "12345678")
	assert.NoError(t, err)
	assert.Equal(t, 7, value)
}
