package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/forms/controller"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// RegisterFormPublicRoutes
// Base: /api/public/forms
func RegisterFormPublicRoutes(r fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	ctrl := controller.NewFormController(db, fs)

	r.Get("/forms/:form_id", ctrl.GetActive)
}
