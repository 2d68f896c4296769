package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"techpals/models"
)

var (
	DB        *gorm.DB
	Redis     *redis.Client
	AppConfig Config
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment    string      `json:"environment"`
	ServerPort     string      `json:"server_port"`
	JWTSecret      string      `json:"-"`
	DBHost         string      `json:"db_host"`
	DBPort         string      `json:"db_port"`
	DBUser         string      `json:"db_user"`
	DBPassword     string      `json:"-"`
	DBName         string      `json:"db_name"`
	DBSSLMode      string      `json:"db_ssl_mode"`
	DBMaxIdleConns int         `json:"db_max_idle_conns"`
	DBMaxOpenConns int         `json:"db_max_open_conns"`
	Redis          RedisConfig `json:"redis"`
	SMTPHost       string      `json:"smtp_host"`
	SMTPPort       int         `json:"smtp_port"`
	SMTPUsername   string      `json:"smtp_username"`
	SMTPPassword   string      `json:"-"`
	FromEmail      string      `json:"from_email"`
	UploadDir      string      `json:"upload_dir"`
	SentryDSN      string      `json:"-"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "techpals"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "no-reply@techpals.app"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
	}

	// Validate required configurations
	if AppConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if AppConfig.Environment == "production" && AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the controllers treat as the sole
	// source of duplicate-field validation errors.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("Successfully connected to the database")
	log.Println("Starting database migration...")
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

// ConnectRedis is optional: without it logout falls back to stateless
// tokens and revocation checks are skipped.
func ConnectRedis() error {
	if !AppConfig.Redis.Enabled {
		log.Println("Redis disabled, token revocation will be skipped")
		return nil
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     AppConfig.Redis.Address,
		Password: AppConfig.Redis.Password,
		DB:       AppConfig.Redis.DB,
	})
	log.Printf("Redis configured at %s", AppConfig.Redis.Address)
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Redis: enabled(%t), SMTP: configured(%t)",
		AppConfig.Redis.Enabled,
		AppConfig.SMTPHost != "")
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Service{},
		&models.Booking{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupBooking{},
		&models.GroupMessage{},
		&models.GroupReport{},
		&models.Task{},
		&models.Category{},
		&models.Post{},
	)
}
