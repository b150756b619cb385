// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "FintraX Backend"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultServerPort           = ":8080"
	DefaultLogLevel             = "info"
	DefaultUnlockQueueSize      = 64
	DefaultVerifyTimeoutSeconds = 30
	DefaultJWTExpiryMinutes     = 60
)
