// internal/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	CORS struct {
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	} `mapstructure:"cors"`
	Auth struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"auth"`
	JWT struct {
		SecretKey     string `mapstructure:"secret_key"`
		ExpiryMinutes int    `mapstructure:"expiry_minutes"`
	} `mapstructure:"jwt"`
	App struct {
		UnlockQueueSize      int `mapstructure:"unlock_queue_size"`
		VerifyTimeoutSeconds int `mapstructure:"verify_timeout_seconds"`
	} `mapstructure:"app"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数でも上書きできるようにする (例: APP_AUTH_ENABLED)
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("auth.enabled", "AUTH_ENABLED")
	viper.BindEnv("jwt.secret_key", "JWT_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		log.Printf("Server port not set, using default '%s'", DefaultServerPort)
		Cfg.Server.Port = DefaultServerPort
	}
	if Cfg.Log.Level == "" {
		Cfg.Log.Level = DefaultLogLevel
	}
	if Cfg.App.UnlockQueueSize <= 0 {
		log.Printf("Unlock queue size not set or invalid, using default '%d'", DefaultUnlockQueueSize)
		Cfg.App.UnlockQueueSize = DefaultUnlockQueueSize
	}
	if Cfg.App.VerifyTimeoutSeconds <= 0 {
		Cfg.App.VerifyTimeoutSeconds = DefaultVerifyTimeoutSeconds
	}
	if Cfg.JWT.ExpiryMinutes <= 0 {
		Cfg.JWT.ExpiryMinutes = DefaultJWTExpiryMinutes
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	// Auth.Enabled のデフォルト値を設定 (未設定なら true = 有効 にする)
	if !viper.IsSet("auth.enabled") {
		log.Println("Auth enabled flag not set, defaulting to true (enabled)")
		Cfg.Auth.Enabled = true
	}
	if Cfg.Auth.Enabled && Cfg.JWT.SecretKey == "" {
		log.Println("Warning: Auth is enabled but JWT secret key is not set.")
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Unlock Queue Size: %d", Cfg.App.UnlockQueueSize)
	log.Printf("Auth Enabled: %t", Cfg.Auth.Enabled)

	return nil
}
