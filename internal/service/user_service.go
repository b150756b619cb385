// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrax_backend/internal/config"
	"fintrax_backend/internal/middleware"
	"fintrax_backend/internal/model"
	"fintrax_backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (string, error)
	GetProfile(ctx context.Context, userDocument string) (*model.User, error)
}

type userService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	cfg      *config.Config
	logger   *slog.Logger
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, cfg *config.Config, logger *slog.Logger) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	logger := middleware.GetLogger(ctx)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Error hashing password", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}

	user := &model.User{
		Document:     req.Document,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.userRepo.Create(ctx, tx, user)
	})
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return nil, model.NewAppError("CONFLICT", "この書類番号またはメールアドレスは既に登録されています", "", model.ErrConflict)
		}
		logger.Error("Error creating user", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザー登録に失敗しました", "", err)
	}

	return user, nil
}

// Login は認証に成功した場合、書類番号を sub に持つJWTを発行します。
// 未登録メールとパスワード不一致は同じエラーにして攻撃者に区別させない。
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrUserNotFound) {
			return "", model.NewAppError("UNAUTHORIZED", "メールアドレスまたはパスワードが正しくありません", "", model.ErrForbidden)
		}
		logger.Error("Error finding user by email", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", model.NewAppError("UNAUTHORIZED", "メールアドレスまたはパスワードが正しくありません", "", model.ErrForbidden)
	}

	token, err := s.generateToken(user.Document)
	if err != nil {
		logger.Error("Error generating JWT", "error", err)
		return "", model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	return token, nil
}

func (s *userService) GetProfile(ctx context.Context, userDocument string) (*model.User, error) {
	user, err := s.userRepo.FindByDocument(ctx, s.db, userDocument)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrUserNotFound) {
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません", "user_document", model.ErrUserNotFound)
		}
		logger := middleware.GetLogger(ctx)
		logger.Error("Error finding user profile", "error", err, "user_document", userDocument)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラーが発生しました", "", err)
	}
	return user, nil
}

func (s *userService) generateToken(document string) (string, error) {
	expiryMinutes := s.cfg.JWT.ExpiryMinutes
	if expiryMinutes <= 0 {
		expiryMinutes = config.DefaultJWTExpiryMinutes
	}
	now := time.Now()
	claims := model.JWTCustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   document,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryMinutes) * time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", fmt.Errorf("userService.generateToken: %w", err)
	}
	return signed, nil
}
