// internal/service/transaction_service_test.go
package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fintrax_backend/internal/model"
	"fintrax_backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTransactionServiceForTest(t *testing.T) (TransactionService, *gorm.DB) {
	t.Helper()
	db := setupAchievementTestDB(t)
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTransactionService(db, repository.NewGormTransactionRepository(), testLogger), db
}

func Test_transactionService_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	document := "10203040"

	t.Run("正常系: 日付未指定は現在時刻 (UTC) になる", func(t *testing.T) {
		svc, _ := newTransactionServiceForTest(t)

		before := time.Now().UTC()
		created, err := svc.CreateTransaction(ctx, document, &model.CreateTransactionRequest{
			Type:     "expense",
			Amount:   decimal.NewFromInt(1500),
			Category: "food",
		})
		require.NoError(t, err)
		assert.False(t, created.Date.Before(before))
		assert.Equal(t, model.TransactionExpense, created.Type)
	})

	t.Run("正常系: 指定した日付はUTCに正規化される", func(t *testing.T) {
		svc, _ := newTransactionServiceForTest(t)

		jst := time.FixedZone("JST", 9*60*60)
		date := time.Date(2025, 6, 1, 8, 0, 0, 0, jst)
		created, err := svc.CreateTransaction(ctx, document, &model.CreateTransactionRequest{
			Type:     "income",
			Amount:   decimal.NewFromInt(30000),
			Category: "salary",
			Date:     &date,
		})
		require.NoError(t, err)
		assert.Equal(t, time.UTC, created.Date.Location())
		assert.Equal(t, date.UTC(), created.Date)
	})

	t.Run("異常系: 0以下の金額は拒否する", func(t *testing.T) {
		svc, _ := newTransactionServiceForTest(t)

		_, err := svc.CreateTransaction(ctx, document, &model.CreateTransactionRequest{
			Type:     "expense",
			Amount:   decimal.NewFromInt(-100),
			Category: "food",
		})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func Test_transactionService_UpdateTransaction(t *testing.T) {
	ctx := context.Background()
	document := "10203040"

	t.Run("正常系: 指定フィールドのみ更新される", func(t *testing.T) {
		svc, _ := newTransactionServiceForTest(t)

		created, err := svc.CreateTransaction(ctx, document, &model.CreateTransactionRequest{
			Type:        "expense",
			Amount:      decimal.NewFromInt(1500),
			Category:    "food",
			Description: "ランチ",
		})
		require.NoError(t, err)

		newCategory := "transport"
		updated, err := svc.UpdateTransaction(ctx, document, created.TransactionID, &model.UpdateTransactionRequest{
			Category: &newCategory,
		})
		require.NoError(t, err)
		assert.Equal(t, "transport", updated.Category)
		assert.Equal(t, "ランチ", updated.Description, "他のフィールドは変わらない")
		assert.True(t, updated.Amount.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("異常系: 更新フィールドなしは拒否する", func(t *testing.T) {
		svc, _ := newTransactionServiceForTest(t)

		created, err := svc.CreateTransaction(ctx, document, &model.CreateTransactionRequest{
			Type:     "expense",
			Amount:   decimal.NewFromInt(1500),
			Category: "food",
		})
		require.NoError(t, err)

		_, err = svc.UpdateTransaction(ctx, document, created.TransactionID, &model.UpdateTransactionRequest{})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("異常系: 他ユーザーの取引は更新できない", func(t *testing.T) {
		svc, _ := newTransactionServiceForTest(t)

		created, err := svc.CreateTransaction(ctx, document, &model.CreateTransactionRequest{
			Type:     "expense",
			Amount:   decimal.NewFromInt(1500),
			Category: "food",
		})
		require.NoError(t, err)

		newCategory := "transport"
		_, err = svc.UpdateTransaction(ctx, "99999999", created.TransactionID, &model.UpdateTransactionRequest{
			Category: &newCategory,
		})
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func Test_transactionService_DeleteTransaction(t *testing.T) {
	ctx := context.Background()
	document := "10203040"

	t.Run("正常系: 論理削除後は一覧にも件数にも出ない", func(t *testing.T) {
		svc, db := newTransactionServiceForTest(t)

		created, err := svc.CreateTransaction(ctx, document, &model.CreateTransactionRequest{
			Type:     "expense",
			Amount:   decimal.NewFromInt(1500),
			Category: "food",
		})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteTransaction(ctx, document, created.TransactionID))

		transactions, err := svc.ListTransactions(ctx, document)
		require.NoError(t, err)
		assert.Empty(t, transactions)

		count, err := repository.NewGormTransactionRepository().CountByUser(ctx, db, document)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// 行自体は deleted_at が打たれて残る
		var raw int64
		require.NoError(t, db.Unscoped().Model(&model.Transaction{}).
			Where("transaction_id = ?", created.TransactionID).Count(&raw).Error)
		assert.Equal(t, int64(1), raw)
	})

	t.Run("異常系: 存在しない取引の削除はNOT_FOUND", func(t *testing.T) {
		svc, _ := newTransactionServiceForTest(t)
		err := svc.DeleteTransaction(ctx, document, uuid.New())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}
