package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/scholarships/controller"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// RegisterScholarshipPublicRoutes
// Base: /api/public/scholarships (read-only, aktif saja untuk list)
func RegisterScholarshipPublicRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	ctrl := controller.NewScholarshipController(db, fs)

	g := r.Group("/scholarships")
	g.Get("/", ctrl.ListPublic)
	g.Get("/:id", ctrl.Get)
}
