package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

func KafkaBroker() string {
	return os.Getenv("KAFKA_BROKER")
}

// OrderSessionTTL is how long an order session may stay untouched before the
// reaper times it out. Defaults to 600 seconds.
func OrderSessionTTL() time.Duration {
	return durationEnv("ORDER_SESSION_TTL", 600*time.Second)
}

// ReaperInterval is how often the session reaper sweeps.
func ReaperInterval() time.Duration {
	return durationEnv("ORDER_REAPER_INTERVAL", 60*time.Second)
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

var API_ENV = os.Getenv("API_ENV")

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// META_TIME_FORMAT is the timestamp format stamped into order metadata.
const META_TIME_FORMAT = "02-01-2006 15:04:05 UTC"
