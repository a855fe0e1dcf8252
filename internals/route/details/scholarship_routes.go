package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	formRoute "kemahasiswaan_backend/internals/features/scholarships/forms/route"
	scholarshipRoute "kemahasiswaan_backend/internals/features/scholarships/scholarships/route"
	submissionRoute "kemahasiswaan_backend/internals/features/scholarships/submissions/route"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// 🔓 /api/public
func ScholarshipPublicRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	scholarshipRoute.RegisterScholarshipPublicRoutes(r, db, fs)
	formRoute.RegisterFormPublicRoutes(r, db, fs)
}

// 👤 /api/u (pendaftar)
func ScholarshipUserRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage, n mailer.Notifier) {
	submissionRoute.RegisterSubmissionUserRoutes(r, db, fs, n)
}

// 🔐 /api/a (admin & kemahasiswaan)
func ScholarshipAdminRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage, n mailer.Notifier) {
	scholarshipRoute.RegisterScholarshipAdminRoutes(r, db, fs)
	formRoute.RegisterFormAdminRoutes(r, db, fs)
	submissionRoute.RegisterSubmissionAdminRoutes(r, db, fs, n)
}
