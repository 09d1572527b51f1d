package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RankQueueName      string
	RankLockKey        string
	RankLockTTLSeconds int

	LeaderboardCachePrefix string
	LeaderboardCacheTTL    time.Duration

	FeedChannel           string
	ProgressChannelPrefix string

	OTPTTL      time.Duration
	MailFrom    string
	FlagMaxSize int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:                getEnv("API_PORT", "8080"),
		JWTKey:                 []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                 time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", "5432"),
		DBUser:                 getEnv("DB_USER", "user"),
		DBPassword:             getEnv("DB_PASSWORD", "password"),
		DBName:                 getEnv("DB_NAME", "thundercipher_db"),
		DBSslMode:              getEnv("DB_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		RankQueueName:          getEnv("RANK_QUEUE_NAME", "rank_recompute_queue"),
		RankLockKey:            getEnv("RANK_LOCK_KEY", "rank_recompute_lock"),
		RankLockTTLSeconds:     getEnvAsInt("RANK_LOCK_TTL_SECONDS", 60),
		LeaderboardCachePrefix: getEnv("LEADERBOARD_CACHE_PREFIX", "leaderboard:"),
		LeaderboardCacheTTL:    time.Duration(getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 30)) * time.Second,
		FeedChannel:            getEnv("FEED_CHANNEL", "feed"),
		ProgressChannelPrefix:  getEnv("PROGRESS_CHANNEL_PREFIX", "progress:"),
		OTPTTL:                 time.Duration(getEnvAsInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		MailFrom:               getEnv("MAIL_FROM", "noreply@thundercipher.local"),
		FlagMaxSize:            getEnvAsInt("FLAG_MAX_SIZE", 256),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
