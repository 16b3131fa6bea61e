package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/halwiz/storefront/pkg/config"
	"github.com/halwiz/storefront/pkg/db"
	"github.com/halwiz/storefront/pkg/otp"
	"github.com/halwiz/storefront/pkg/storage"
)

type StorefrontConfig struct {
	config.Config

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	S3  storage.Config
	OTP otp.Config

	CORSOrigins                 []string
	AdminPromotionRequiresAdmin bool
}

// Load reads .env when present, then the environment. Missing required keys are fatal.
func Load() StorefrontConfig {
	_ = godotenv.Load()

	base := config.Load()
	config.MustNonEmpty(base.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(base.JWTSecret, "JWT_SECRET")
	config.MustOneOf(base.DBDriver, "DB_DRIVER", db.DriverPostgres, db.DriverMySQL, db.DriverSQLite)

	return StorefrontConfig{
		Config: base,

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         config.EnvIntDefault("REDIS_DB", 0),
		ProductCacheTTL: config.EnvDurationDefault("PRODUCT_CACHE_TTL", 5*time.Minute),

		S3: storage.Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    config.EnvDefault("S3_REGION", "us-east-1"),
			Bucket:    os.Getenv("S3_BUCKET"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
		},
		OTP: otp.Config{
			SendURL:     config.EnvDefault("MESSAGECENTRAL_BASE_URL", "https://cpaas.messagecentral.com/verification/v3/send"),
			ValidateURL: config.EnvDefault("MESSAGECENTRAL_VALIDATE_URL", "https://cpaas.messagecentral.com/verification/v3/validateOtp"),
			CustomerID:  os.Getenv("MESSAGECENTRAL_CUSTOMER_ID"),
			AuthToken:   os.Getenv("MESSAGECENTRAL_AUTH_TOKEN"),
		},

		CORSOrigins:                 config.CSV(config.EnvDefault("CORS_ORIGINS", "*")),
		AdminPromotionRequiresAdmin: config.EnvBoolDefault("ADMIN_PROMOTION_REQUIRES_ADMIN", false),
	}
}
