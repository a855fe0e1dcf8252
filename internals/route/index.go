package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/configs"
	"kemahasiswaan_backend/internals/constants"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
	authMiddleware "kemahasiswaan_backend/internals/middlewares/auth"
	routeDetails "kemahasiswaan_backend/internals/route/details"
)

// Deps: kolaborator eksternal yang dipakai semua route.
type Deps struct {
	DB        *gorm.DB
	Storage   storage.FileStorage
	Notifier  mailer.Notifier
	JWTSecret string

	// UploadDir diisi kalau STORAGE_DRIVER=local (disajikan di /uploads)
	UploadDir string
}

func SetupRoutes(app *fiber.App, d Deps) {
	BaseRoutes(app, d.DB)

	if d.UploadDir != "" {
		configs.SLog.Infof("[INFO] Serving uploads dari %s", d.UploadDir)
		app.Static("/uploads", d.UploadDir, fiber.Static{ByteRange: true})
	}

	// ===================== GROUPS =====================

	configs.SLog.Info("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	configs.SLog.Info("[INFO] Setting up USER group...")
	user := app.Group("/api/u", authMiddleware.AuthJWT(d.JWTSecret))

	configs.SLog.Info("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(d.JWTSecret),
		authMiddleware.OnlyRoles(constants.RoleErrorStaff("mengelola beasiswa"), constants.StaffRoles...),
	)

	// ===================== MOUNT ROUTES =====================

	configs.SLog.Info("[INFO] Mounting Scholarship routes...")
	routeDetails.ScholarshipPublicRoutes(public, d.DB, d.Storage)
	routeDetails.ScholarshipUserRoutes(user, d.DB, d.Storage, d.Notifier)
	routeDetails.ScholarshipAdminRoutes(admin, d.DB, d.Storage, d.Notifier)
}
