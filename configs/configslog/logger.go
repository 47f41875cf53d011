package configslog

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log yapısal loglama için global zap logger.
// SLog ise printf tarzı mesajlar için sugared varyantı.
var (
	Log  *zap.Logger
	SLog *zap.SugaredLogger
)

// InitLogger global loggerları APP_ENV'e göre başlatır.
// production: JSON encoder, info seviyesi. Diğer her şey: console encoder, debug seviyesi.
func InitLogger() {
	env := strings.ToLower(os.Getenv("APP_ENV"))

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		// Logger kurulamazsa uygulamanın devam etmesinin anlamı yok.
		panic("logger başlatılamadı: " + err.Error())
	}

	Log = logger
	SLog = logger.Sugar()
}

// SyncLogger buffer'daki logları flush eder. main içinde defer ile çağrılmalı.
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
