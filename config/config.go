package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	Store             string `mapstructure:"STORE"` // "mongo" or "memory"
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisIdempotencyDB int    `mapstructure:"REDIS_IDEMPOTENCY_DB"`
	RedisQueueDB       int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	SignupCredits        int64  `mapstructure:"SIGNUP_CREDITS"`
	SlotMinCost          int64  `mapstructure:"SLOT_MIN_COST"`
	SlotMaxCost          int64  `mapstructure:"SLOT_MAX_COST"`
	SlotAllowedDurations []int  `mapstructure:"SLOT_ALLOWED_DURATIONS"`
	ExpirySweepSchedule  string `mapstructure:"EXPIRY_SWEEP_SCHEDULE"`
	ReserveMaxRetries    int    `mapstructure:"RESERVE_MAX_RETRIES"`
	RatingMaxRetries     int    `mapstructure:"RATING_MAX_RETRIES"`
	ReminderLeadMinutes  int    `mapstructure:"REMINDER_LEAD_MINUTES"`

	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE", "mongo")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "timeswap")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_IDEMPOTENCY_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("SIGNUP_CREDITS", 5)
	viper.SetDefault("SLOT_MIN_COST", 1)
	viper.SetDefault("SLOT_MAX_COST", 10)
	viper.SetDefault("SLOT_ALLOWED_DURATIONS", []int{30, 60, 90, 120})
	viper.SetDefault("EXPIRY_SWEEP_SCHEDULE", "@every 5m")
	viper.SetDefault("RESERVE_MAX_RETRIES", 5)
	viper.SetDefault("RATING_MAX_RETRIES", 5)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 60)
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

func UseMemoryStore() bool {
	return AppConfig.Store == "memory"
}

func ReminderLead() time.Duration {
	return time.Duration(AppConfig.ReminderLeadMinutes) * time.Minute
}
