package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	SQLitePath     string
	JWTSecret      string
	TokenTTL       time.Duration
	APIKey         string
	AllowedOrigins []string
	AppName        string
	RedisAddr      string
	RedisPassword  string
	MessageTopic   string
	MailAPIKey     string
	MailFrom       string
	MailEndpoint   string
}

// Load reads the process environment, after merging an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	return &Config{
		Port:           getEnv("PORT", "8080"),
		DBDriver:       driver,
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", defaultPort(driver)),
		DBUser:         getEnv("DB_USER", "twentyonepoints"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "twentyonepoints"),
		SQLitePath:     getEnv("SQLITE_PATH", "twentyonepoints.db"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		APIKey:         getEnv("API_KEY", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		AppName:        getEnv("APP_NAME", "twentyOnePointsApp"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MessageTopic:   getEnv("MESSAGE_TOPIC", "topic-jhipster"),
		MailAPIKey:     getEnv("MAIL_API_KEY", ""),
		MailFrom:       getEnv("MAIL_FROM", "21-Points <no-reply@21-points.local>"),
		MailEndpoint:   getEnv("MAIL_ENDPOINT", "https://api.resend.com/emails"),
	}
}

// DSN builds the data source name for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=disable"
	case "sqlite":
		return "file:" + c.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

func defaultPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "3306"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
