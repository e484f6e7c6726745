package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MongoURI    string
	CassDB      string
	RedisHost   string
	RedisPort   string
	HDFSUri     string
	JWTSecret   string
	EmailFrom   string
	SMTPHost    string
	SMTPPass    string
	SMTPPort    int
	SMTPUser    string
	ServiceName string
	JaegerAddr  string

	// Booking lifecycle windows. The grace window covers a fresh pending
	// booking, the payment window covers pending_payment.
	GraceWindow   time.Duration
	PaymentWindow time.Duration
	SweepInterval time.Duration
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("No .env file found, reading configuration from environment")
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      os.Getenv("MONGO_DB_URI"),
		CassDB:        os.Getenv("CASS_DB"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     os.Getenv("REDIS_PORT"),
		HDFSUri:       os.Getenv("HDFS_URI"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		EmailFrom:     getEnv("EMAIL_FROM", "bookings@villa.example.com"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPPort:      smtpPort,
		SMTPUser:      os.Getenv("SMTP_USER"),
		ServiceName:   getEnv("SERVICE_NAME", "villa-booking-server"),
		JaegerAddr:    os.Getenv("JAEGER_ADDRESS"),
		GraceWindow:   getDuration("BOOKING_GRACE_WINDOW", time.Hour),
		PaymentWindow: getDuration("BOOKING_PAYMENT_WINDOW", 24*time.Hour),
		SweepInterval: getDuration("BOOKING_SWEEP_INTERVAL", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
