package configsdatabase

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"sofra.link/configs/configslog"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB .env dosyasını yükler ve PostgreSQL bağlantısını açar.
// Bağlantı kurulamazsa uygulama başlamamalı (Fatal).
func InitDB() {
	if err := godotenv.Load(); err != nil {
		configslog.SLog.Info(".env dosyası bulunamadı, ortam değişkenleri kullanılacak.")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "sofra"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	conn, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		configslog.Log.Fatal("Veritabanı bağlantısı kurulamadı", zap.Error(err))
		return
	}

	sqlDB, err := conn.DB()
	if err != nil {
		configslog.Log.Fatal("Veritabanı havuzu alınamadı", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(getEnvInt("DB_MAX_OPEN_CONNS", 25))
	sqlDB.SetMaxIdleConns(getEnvInt("DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxLifetime(time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute)

	db = conn
	configslog.SLog.Info("Veritabanı bağlantısı kuruldu.")
}

// GetDB global *gorm.DB örneğini döndürür. InitDB çağrılmadan kullanılmamalı.
func GetDB() *gorm.DB {
	return db
}

// SetDB test ortamında bağlantıyı değiştirmek için kullanılır (ör. in-memory sqlite).
func SetDB(conn *gorm.DB) {
	db = conn
}

// CloseDB bağlantı havuzunu kapatır. main içinde defer ile çağrılmalı.
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("Veritabanı kapatılırken havuz alınamadı", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("Veritabanı bağlantısı kapatılamadı", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		configslog.SLog.Warnf("Geçersiz %s değeri (%q), varsayılan %d kullanılıyor.", key, v, fallback)
		return fallback
	}
	return n
}
