package configs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log & SLog dipakai di seluruh service. Default no-op supaya test/seed aman
// walau InitLogger belum dipanggil.
var (
	Log  = zap.NewNop()
	SLog = Log.Sugar()
)

// InitLogger menyiapkan zap sesuai environment.
// production → JSON (info), selain itu console berwarna (debug).
func InitLogger(env string) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		// fallback: tetap jalan tanpa log terstruktur
		l = zap.NewExample()
	}
	Log = l
	SLog = l.Sugar()
}

// SyncLogger flush buffer sebelum proses keluar.
func SyncLogger() {
	_ = Log.Sync()
}
