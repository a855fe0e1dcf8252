package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/configs"
	formModel "kemahasiswaan_backend/internals/features/scholarships/forms/model"
	scholarshipModel "kemahasiswaan_backend/internals/features/scholarships/scholarships/model"
	submissionModel "kemahasiswaan_backend/internals/features/scholarships/submissions/model"
	helper "kemahasiswaan_backend/internals/helpers"
)

var DB *gorm.DB

func ConnectDB() {
	configs.SLog.Info("🔌 Koneksi ke PostgreSQL...")

	// statement_timeout selaras dengan timeout request di main.go
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=kemahasiswaan&options=-c statement_timeout=5000",
		configs.GetEnv("DB_USER"),
		configs.GetEnv("DB_PASSWORD"),
		configs.GetEnv("DB_HOST", "localhost"),
		configs.GetEnv("DB_PORT", "5432"),
		configs.GetEnv("DB_NAME"),
		configs.GetEnv("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true, // unique violation → gorm.ErrDuplicatedKey (dipakai generator ID)
	})
	if err != nil {
		configs.Log.Fatal("❌ Gagal konek DB", zap.Error(err))
	}
	DB = db
	configs.SLog.Info("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		configs.Log.Warn("pool tune err", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(configs.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(configs.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Models daftar tabel yang dikelola AutoMigrate, urut sesuai dependensi FK.
func Models() []any {
	return []any{
		&helper.IDSequence{},
		&scholarshipModel.ScholarshipModel{},
		&formModel.ScholarshipFormModel{},
		&formModel.FormSettingModel{},
		&formModel.FormFieldModel{},
		&submissionModel.FormSubmissionModel{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	configs.SLog.Info("✅ Migrasi selesai")
	return nil
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
