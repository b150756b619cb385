// internal/model/user.go
package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// User はFintraXの利用者を表します。
// 主キーは身分証明書番号 (documento) の文字列。XPは実績の解除でのみ加算される。
type User struct {
	Document     string         `gorm:"primaryKey" json:"user_document"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"unique;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	XP           int            `gorm:"not null;default:0" json:"xp"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type ContextKey string

const (
	UserDocumentKey ContextKey = "userDocument"
)

// RegisterRequest は新規登録APIのリクエストボディの構造体 (DTO)
type RegisterRequest struct {
	Document string `json:"user_document" validate:"required,min=4,max=20"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse はクライアントに返すユーザー情報の構造体
type UserResponse struct {
	Document  string    `json:"user_document"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	XP        int       `json:"xp"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest はログインAPIのリクエストボディ
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse はログイン成功時のレスポンス
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// JWTCustomClaims はJWTに含めるカスタムクレーム（ペイロード）
// sub にはユーザーの書類番号を入れる
type JWTCustomClaims struct {
	jwt.RegisteredClaims
}
