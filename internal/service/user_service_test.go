// internal/service/user_service_test.go
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"fintrax_backend/internal/config"
	"fintrax_backend/internal/model"
	"fintrax_backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newUserServiceForTest(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // 一意制約違反を gorm.ErrDuplicatedKey に変換する
	})
	require.NoError(t, err, "failed to connect database for testing")
	require.NoError(t, db.AutoMigrate(&model.User{}))

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.ExpiryMinutes = 60

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(db, repository.NewGormUserRepository(), cfg, testLogger), db
}

func Test_userService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: パスワードはハッシュ化されXPは0で登録される", func(t *testing.T) {
		svc, db := newUserServiceForTest(t)

		user, err := svc.Register(ctx, &model.RegisterRequest{
			Document: "10203040",
			Name:     "テスト太郎",
			Email:    "taro@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEqual(t, "password123", user.PasswordHash)

		var saved model.User
		require.NoError(t, db.First(&saved, "document = ?", "10203040").Error)
		assert.Equal(t, 0, saved.XP)
	})

	t.Run("異常系: 重複登録はCONFLICT", func(t *testing.T) {
		svc, _ := newUserServiceForTest(t)

		req := &model.RegisterRequest{
			Document: "10203040",
			Name:     "テスト太郎",
			Email:    "taro@example.com",
			Password: "password123",
		}
		_, err := svc.Register(ctx, req)
		require.NoError(t, err)

		_, err = svc.Register(ctx, req)
		assert.ErrorIs(t, err, model.ErrConflict)
	})
}

func Test_userService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 書類番号をsubに持つトークンを発行する", func(t *testing.T) {
		svc, _ := newUserServiceForTest(t)

		_, err := svc.Register(ctx, &model.RegisterRequest{
			Document: "10203040",
			Name:     "テスト太郎",
			Email:    "taro@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		token, err := svc.Login(ctx, &model.LoginRequest{
			Email:    "taro@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		require.NotEmpty(t, token)

		parsed, err := jwt.ParseWithClaims(token, &model.JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		claims := parsed.Claims.(*model.JWTCustomClaims)
		assert.Equal(t, "10203040", claims.Subject)
	})

	t.Run("異常系: パスワード不一致は認証エラー", func(t *testing.T) {
		svc, _ := newUserServiceForTest(t)

		_, err := svc.Register(ctx, &model.RegisterRequest{
			Document: "10203040",
			Name:     "テスト太郎",
			Email:    "taro@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, &model.LoginRequest{
			Email:    "taro@example.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("異常系: 未登録メールも同じ認証エラー", func(t *testing.T) {
		svc, _ := newUserServiceForTest(t)

		_, err := svc.Login(ctx, &model.LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})
}
