package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/submissions/controller"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// RegisterSubmissionAdminRoutes
// Base: /api/a
func RegisterSubmissionAdminRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage, n mailer.Notifier) {
	ctrl := controller.NewSubmissionController(db, fs, n)

	r.Get("/forms/:form_id/submissions", ctrl.ListByForm) // ?status=&page=&per_page=
	r.Get("/submissions/:submission_id", ctrl.Get)
	r.Patch("/submissions/:submission_id", ctrl.UpdateStatus)
}
