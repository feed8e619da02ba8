package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	API      ServiceConfig
	Company  CompanyConfig
	Features FeatureFlags
	LogLevel string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	InvoicesTopic string
	PaymentsTopic string
	ConsumerGroup string
	WriteTimeout  time.Duration
}

// StorageConfig configures the S3 bucket that archives exported PDFs.
type StorageConfig struct {
	Region          string
	Bucket          string
	Prefix          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ServiceConfig points the CLI at the invoices API.
type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CompanyConfig is printed in invoice headers.
type CompanyConfig struct {
	Name string
}

type FeatureFlags struct {
	EnableCaching     bool
	EnableEvents      bool
	EnablePaymentSync bool
	EnablePDFArchive  bool
	EnableMetrics     bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       getEnvString("DB_DRIVER", "postgres"),
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "acme"),
			Password:     getEnvString("DB_PASSWORD", "acme"),
			Name:         getEnvString("DB_NAME", "invoice_hub"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			InvoicesTopic: getEnvString("KAFKA_INVOICES_TOPIC", "invoices.events"),
			PaymentsTopic: getEnvString("KAFKA_PAYMENTS_TOPIC", "payments.events"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "invoices-service"),
			WriteTimeout:  time.Duration(getEnvInt("KAFKA_WRITE_TIMEOUT", 10)) * time.Second,
		},
		Storage: StorageConfig{
			Region:          getEnvString("AWS_REGION", "ap-south-1"),
			Bucket:          getEnvString("PDF_ARCHIVE_BUCKET", ""),
			Prefix:          getEnvString("PDF_ARCHIVE_PREFIX", "invoices/"),
			Endpoint:        getEnvString("PDF_ARCHIVE_ENDPOINT", ""),
			AccessKeyID:     getEnvString("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnvString("AWS_SECRET_ACCESS_KEY", ""),
		},
		API: ServiceConfig{
			BaseURL: strings.TrimRight(getEnvString("INVOICES_API_URL", "http://localhost:8084"), "/"),
			Timeout: time.Duration(getEnvInt("INVOICES_API_TIMEOUT", 30)) * time.Second,
		},
		Company: CompanyConfig{
			Name: getEnvString("COMPANY_NAME", "Invoice Hub"),
		},
		Features: FeatureFlags{
			EnableCaching:     getEnvBool("FEATURE_CACHING", true),
			EnableEvents:      getEnvBool("FEATURE_EVENTS", false),
			EnablePaymentSync: getEnvBool("FEATURE_PAYMENT_SYNC", false),
			EnablePDFArchive:  getEnvBool("FEATURE_PDF_ARCHIVE", false),
			EnableMetrics:     getEnvBool("FEATURE_METRICS", true),
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
