package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kemahasiswaan_backend/internals/configs"
	database "kemahasiswaan_backend/internals/databases"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
	middlewares "kemahasiswaan_backend/internals/middlewares"
	routes "kemahasiswaan_backend/internals/route"
	"kemahasiswaan_backend/internals/seeds"
)

var seedFile string

var rootCmd = &cobra.Command{
	Use:   "kemahasiswaan",
	Short: "Backend beasiswa kemahasiswaan (form dinamis + pendaftaran)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configs.LoadEnv()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		configs.SyncLogger()
	},
	// tanpa subcommand → serve
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Jalankan HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "AutoMigrate semua tabel",
	RunE: func(cmd *cobra.Command, args []string) error {
		database.ConnectDB()
		defer database.Close()
		return database.Migrate(database.DB)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Isi data demo (beasiswa + form Biodata)",
	RunE: func(cmd *cobra.Command, args []string) error {
		database.ConnectDB()
		defer database.Close()
		if err := database.Migrate(database.DB); err != nil {
			return err
		}
		fs, err := storage.NewFromEnv()
		if err != nil {
			return err
		}
		return seeds.RunAllSeeds(cmd.Context(), database.DB, fs, seedFile)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", seeds.DefaultScholarshipSeed, "path file JSON seed beasiswa")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe() error {
	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               int(storage.MaxUploadBytes())*4 + 1<<20, // beberapa lampiran per request
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching
	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool
	database.ConnectDB()
	database.TunePool()
	if configs.GetEnv("AUTO_MIGRATE") == "true" {
		if err := database.Migrate(database.DB); err != nil {
			return err
		}
	}

	fs, err := storage.NewFromEnv()
	if err != nil {
		return err
	}

	deps := routes.Deps{
		DB:        database.DB,
		Storage:   fs,
		Notifier:  mailer.NewFromEnv(),
		JWTSecret: configs.JWTSecret,
	}
	if local, ok := fs.(*storage.LocalStorage); ok && strings.HasPrefix(local.PublicURL, "/uploads") {
		deps.UploadDir = local.Root
	}

	// ✅ Routes
	routes.SetupRoutes(app, deps)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	// Start server non-blocking
	errCh := make(chan error, 1)
	go func() {
		configs.SLog.Infof("✅ Listening on :%s", port)
		errCh <- app.Listen("0.0.0.0:" + port)
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		database.Close()
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		configs.Log.Warn("shutdown tidak bersih", zap.Error(err))
	}
	database.Close()
	configs.SLog.Info("👋 Server berhenti")
	return nil
}
