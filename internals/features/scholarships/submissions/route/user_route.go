package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/submissions/controller"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
	"kemahasiswaan_backend/internals/middlewares"
)

// RegisterSubmissionUserRoutes
// Base: /api/u
func RegisterSubmissionUserRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage, n mailer.Notifier) {
	ctrl := controller.NewSubmissionController(db, fs, n)

	r.Post("/forms/:form_id/submissions", middlewares.SubmitRateLimiter(), ctrl.Submit)
	r.Get("/submissions", ctrl.ListMine)
}
