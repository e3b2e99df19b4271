package config

import (
	"github.com/spf13/viper"
)

// The service runs as a pod with its DB connection, AWS region and queue URLs
// injected as environment variables. Defaults target the docker-compose stack.

type Config struct {
	DBHost            string `mapstructure:"DB_HOST"`
	DBPort            string `mapstructure:"DB_PORT"`
	DBUser            string `mapstructure:"DB_USER"`
	DBPassword        string `mapstructure:"DB_PASSWORD"`
	DBName            string `mapstructure:"DB_NAME"`
	ServerPort        string `mapstructure:"SERVER_PORT"`
	IsLocalDev        bool   `mapstructure:"IS_LOCAL_DEV"`
	AWSRegion         string `mapstructure:"AWS_REGION"`
	AWSEndpoint       string `mapstructure:"AWS_ENDPOINT"`
	NotifySQSQueueURL string `mapstructure:"NOTIFY_SQS_QUEUE_URL"`
	EmailSender       string `mapstructure:"EMAIL_SENDER"`
	ExportBucket      string `mapstructure:"EXPORT_BUCKET"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	OTLPEndpoint      string `mapstructure:"OTLP_ENDPOINT"`
	EventFetchLimit   int    `mapstructure:"EVENT_FETCH_LIMIT"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "attendance_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("IS_LOCAL_DEV", false)
	viper.SetDefault("AWS_REGION", "ap-northeast-1")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("NOTIFY_SQS_QUEUE_URL", "http://localstack:4566/000000000000/notify-queue")
	viper.SetDefault("EMAIL_SENDER", "attendance@attendance-service.com")
	viper.SetDefault("EXPORT_BUCKET", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("OTLP_ENDPOINT", "jaeger:4317")
	viper.SetDefault("EVENT_FETCH_LIMIT", 800)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
