package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 開発用の署名シークレット（GO_ENVがdevelopment/local/testのときだけ使う）
const devJWTSecret = "dev_secret_change_me"

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // development/production

	DBDriver    string // postgres / sqlite
	DatabaseURL string // あれば最優先

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	SQLitePath string // DB_DRIVER=sqliteのとき

	JWTSecret         string        // JWT署名シークレット
	InsecureDevSecret bool          // 開発用シークレットで起動した
	TokenTTL          time.Duration // アクセストークンの有効期限（1h）

	FEURL string // フロントURL（CORS）

	UploadDir      string // 画像の保存先
	ImageURLPrefix string // 画像の公開パス
	MaxUploadSize  string // echoのBodyLimit（"10M"）

	S3 S3Config

	KafkaBrokers     []string
	KafkaTopicPrefix string

	LogLevel string

	AdminEmail    string // 起動時に作る管理者（任意）
	AdminPassword string

	AuthRateLimit int // login/registerの1分あたり上限（IPごと）
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	ttl, err := durationDefault("TOKEN_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	rateLimit, err := atoiDefault("AUTH_RATE_LIMIT", 20)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "production"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "secondhand.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  ttl,

		FEURL: getenv("FE_URL", "http://localhost:5173"),

		UploadDir:      getenv("UPLOAD_DIR", "images"),
		ImageURLPrefix: strings.TrimRight(getenv("IMAGE_URL_PREFIX", "/images"), "/"),
		MaxUploadSize:  getenv("MAX_UPLOAD_SIZE", "10M"),

		S3: S3Config{
			Region:          getenv("S3_REGION", "ap-northeast-1"),
			Bucket:          os.Getenv("S3_BUCKET"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
		},

		KafkaBrokers:     splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),

		LogLevel: getenv("LOG_LEVEL", "info"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		AuthRateLimit: rateLimit,
	}

	//署名シークレットは本番では必須。開発環境だけ固定値で起動できる
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
		cfg.InsecureDevSecret = true
	}

	//必須チェック
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			if cfg.PostgresUser == "" {
				return Config{}, fmt.Errorf("POSTGRES_USER is required")
			}
			if cfg.PostgresDB == "" {
				return Config{}, fmt.Errorf("POSTGRES_DB is required")
			}
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite: %q", cfg.DBDriver)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.S3.Bucket != "" && cfg.S3.Region == "" {
		return Config{}, fmt.Errorf("S3_REGION is required when S3_BUCKET is set")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// ローカル開発・テスト環境か
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.GoEnv) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
