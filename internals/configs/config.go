package configs

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	AppEnv    string
	JWTSecret string
)

// =======================
// ENV LOADER
// =======================
// Logger ikut diinisialisasi di sini karena level/encoder bergantung pada APP_ENV.
func LoadEnv() {
	railway := os.Getenv("RAILWAY_ENVIRONMENT") != ""
	var dotenvErr error
	if !railway {
		dotenvErr = godotenv.Load()
	}

	AppEnv = strings.ToLower(GetEnv("APP_ENV", "development"))
	InitLogger(AppEnv)

	switch {
	case railway:
		SLog.Info("🚀 Running in Railway, menggunakan ENV dari sistem")
	case dotenvErr != nil:
		SLog.Warn("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
	default:
		SLog.Info("✅ .env file berhasil dimuat!")
	}

	JWTSecret = GetEnv("JWT_SECRET")

	if JWTSecret == "" {
		SLog.Error("❌ JWT_SECRET belum diset!")
	} else {
		SLog.Info("✅ JWT_SECRET berhasil dimuat.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

// GetEnvInt membaca angka non-negatif; nilai kosong/invalid → def.
func GetEnvInt(key string, def int) int {
	if v := GetEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func IsProduction() bool { return AppEnv == "production" }

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	level := gormLogger.Info
	if IsProduction() {
		level = gormLogger.Warn
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		SLog.Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		SLog.Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		SLog.Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("file", utils.FileWithLineNum()),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		Log.Error("[SQL ERROR]", append(fields, zap.Error(err))...)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		Log.Warn("[SLOW SQL]", fields...)
	case l.LogLevel >= gormLogger.Info:
		Log.Debug("[QUERY]", fields...)
	}
}
