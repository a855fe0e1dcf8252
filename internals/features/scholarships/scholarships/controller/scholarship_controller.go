package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/scholarships/dto"
	"kemahasiswaan_backend/internals/features/scholarships/scholarships/service"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type ScholarshipController struct {
	DB      *gorm.DB
	Service *service.Service
}

func NewScholarshipController(db *gorm.DB, fs storage.FileStorage) *ScholarshipController {
	return &ScholarshipController{DB: db, Service: service.New(db, fs)}
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// posterFrom: file "poster" opsional pada multipart.
func posterFrom(c *fiber.Ctx) *storage.Upload {
	if !isMultipart(c) {
		return nil
	}
	fh, err := c.FormFile("poster")
	if err != nil || fh == nil {
		return nil
	}
	return storage.FromFileHeader(fh)
}

// ===================== CREATE =====================
// POST /api/a/scholarships
func (h *ScholarshipController) Create(c *fiber.Ctx) error {
	actor, err := helper.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CreateScholarshipRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}

	m, err := h.Service.Create(c.UserContext(), actor, req, posterFrom(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Beasiswa berhasil dibuat", dto.FromModel(*m))
}

// ===================== LIST =====================
// GET /api/public/scholarships , GET /api/a/scholarships
func (h *ScholarshipController) List(c *fiber.Ctx) error {
	var q dto.ListScholarshipQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	rows, total, err := h.Service.List(c.UserContext(), q, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// ListPublic: hanya beasiswa aktif.
func (h *ScholarshipController) ListPublic(c *fiber.Ctx) error {
	c.Request().URI().QueryArgs().Set("is_active", "true")
	return h.List(c)
}

// ===================== DETAIL =====================
// GET /api/.../scholarships/:id
func (h *ScholarshipController) Get(c *fiber.Ctx) error {
	m, err := h.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(*m))
}

// ===================== UPDATE =====================
// PUT /api/a/scholarships/:id
func (h *ScholarshipController) Update(c *fiber.Ctx) error {
	actor, err := helper.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpdateScholarshipRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}

	m, err := h.Service.Update(c.UserContext(), c.Params("id"), actor, req, posterFrom(c))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Beasiswa berhasil diperbarui", dto.FromModel(*m))
}

// ===================== DELETE =====================
// DELETE /api/a/scholarships/:id
func (h *ScholarshipController) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Beasiswa berhasil dihapus", fiber.Map{"scholarship_id": id})
}
