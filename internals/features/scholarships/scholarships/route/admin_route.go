package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/scholarships/controller"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// RegisterScholarshipAdminRoutes
// Base: /api/a/scholarships
func RegisterScholarshipAdminRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	ctrl := controller.NewScholarshipController(db, fs)

	g := r.Group("/scholarships")
	g.Post("/", ctrl.Create)
	g.Get("/", ctrl.List) // ?q=&is_active=&page=&per_page=&sort_by=&order=
	g.Get("/:id", ctrl.Get)
	g.Put("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
