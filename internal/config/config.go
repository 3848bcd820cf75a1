package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"3001"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE" envDefault:""`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"metagen"`
	DBPath     string `env:"DBPath" envDefault:"datas/metagen.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	// 导出文件存储，none 表示不导出 CSV
	StorageType     string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir string `env:"STORAGE_LOCAL_DIR" envDefault:"datas/exports"`

	// S3 兼容存储配置
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`

	// 平台共享凭证，ourApi 且请求未携带 apiKey 时使用
	OpenAIAPIKey     string `env:"OPENAI_API_KEY" envDefault:""`
	GeminiAPIKey     string `env:"GEMINI_API_KEY" envDefault:""`
	VolcengineAPIKey string `env:"VOLCENGINE_API_KEY" envDefault:""`

	OpenAIModel       string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL" envDefault:""`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	VolcengineModel   string        `env:"VOLCENGINE_MODEL" envDefault:"doubao-1-5-vision-pro-32k-250115"`
	LLMRequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"2m"`

	MaxAttempts        int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	GeminiFileInterval time.Duration `env:"GEMINI_FILE_INTERVAL" envDefault:"4s"`
	CheckpointInterval time.Duration `env:"CHECKPOINT_INTERVAL" envDefault:"5s"`

	BillingEnabled        bool  `env:"BILLING_ENABLED" envDefault:"true"`
	CreditRatePlatformKey int64 `env:"CREDIT_RATE_PLATFORM_KEY" envDefault:"2"`
	CreditRateOwnKey      int64 `env:"CREDIT_RATE_OWN_KEY" envDefault:"1"`

	// 为空时 /process 与 /api 不做鉴权
	AuthSecret string `env:"AUTH_SECRET" envDefault:""`
	AuthIssuer string `env:"AUTH_ISSUER" envDefault:"metagen"`
}

// ParseConfig 读取 .env（若存在）后解析环境变量
func ParseConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	if err := Conf.Validate(); err != nil {
		return Config{}, err
	}
	return Conf, nil
}

// Validate 检查取值范围
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("MAX_ATTEMPTS must be at least 1")
	}
	if c.GeminiFileInterval < 0 || c.CheckpointInterval < 0 {
		return errors.New("intervals must not be negative")
	}
	if c.CreditRatePlatformKey < 0 || c.CreditRateOwnKey < 0 {
		return errors.New("credit rates must not be negative")
	}
	if c.CreditRateOwnKey > c.CreditRatePlatformKey {
		return errors.New("CREDIT_RATE_OWN_KEY must not exceed CREDIT_RATE_PLATFORM_KEY")
	}
	return nil
}
