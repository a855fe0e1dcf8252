package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/forms/controller"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// RegisterFormAdminRoutes
// Base: /api/a/forms
func RegisterFormAdminRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	ctrl := controller.NewFormController(db, fs)

	g := r.Group("/forms")
	g.Post("/", ctrl.Create) // JSON atau multipart (payload + sections[i][fields][j][file])
	g.Get("/", ctrl.List)    // ?scholarship_id=&is_active=&q=&page=&per_page=
	g.Get("/:form_id", ctrl.Get)
	g.Put("/:form_id", ctrl.Update)
	g.Delete("/:form_id", ctrl.Delete)
	g.Patch("/:form_id/settings", ctrl.UpdateSettings)
}
