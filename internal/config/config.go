package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	JWTSecret string // JWT署名シークレット

	StoreDriver string // memory / file / postgres
	CartDataDir string // fileドライバの保存先

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	DemoUserEmail        string // デモログインのメール
	DemoUserPasswordHash string // デモログインのbcryptハッシュ

	DebounceMS int // 数量入力のデバウンス（ms、0ならデフォルト）
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port:  os.Getenv("PORT"),
		GoEnv: os.Getenv("GO_ENV"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StoreDriver: os.Getenv("STORE_DRIVER"),
		CartDataDir: os.Getenv("CART_DATA_DIR"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),

		DemoUserEmail:        os.Getenv("DEMO_USER_EMAIL"),
		DemoUserPasswordHash: os.Getenv("DEMO_USER_PASSWORD_HASH"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "memory"
	}

	switch cfg.StoreDriver {
	case "memory":
	case "file":
		if cfg.CartDataDir == "" {
			return Config{}, fmt.Errorf("CART_DATA_DIR is required for file driver")
		}
	case "postgres":
		pgPort, err := mustAtoi("POSTGRES_PORT")
		if err != nil {
			return Config{}, err
		}
		cfg.PostgresPort = pgPort

		if cfg.PostgresUser == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required")
		}
		if cfg.PostgresPassword == "" {
			return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
		}
		if cfg.PostgresDB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required")
		}
		if cfg.PostgresHost == "" {
			return Config{}, fmt.Errorf("POSTGRES_HOST is required")
		}
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be memory, file or postgres")
	}

	if v := os.Getenv("DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return Config{}, fmt.Errorf("DEBOUNCE_MS must be a non-negative number")
		}
		cfg.DebounceMS = ms
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
