package controller

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/forms/dto"
	"kemahasiswaan_backend/internals/features/scholarships/forms/service"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type FormController struct {
	DB      *gorm.DB
	Service *service.Service
}

func NewFormController(db *gorm.DB, fs storage.FileStorage) *FormController {
	return &FormController{DB: db, Service: service.New(db, fs)}
}

var reFieldFile = regexp.MustCompile(`^sections\[(\d+)\]\[fields\]\[(\d+)\]\[file\]$`)

// parsePayload: JSON biasa, atau multipart dengan "payload" (JSON) +
// lampiran di sections[i][fields][j][file].
func parsePayload(c *fiber.Ctx) (dto.FormPayload, error) {
	var p dto.FormPayload
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if !strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&p); err != nil {
			return p, fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
		}
		return p, nil
	}

	mf, err := c.MultipartForm()
	if err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, "Multipart tidak valid")
	}
	raw := ""
	if v := mf.Value["payload"]; len(v) > 0 {
		raw = v[0]
	}
	if strings.TrimSpace(raw) == "" {
		return p, fiber.NewError(fiber.StatusBadRequest, "Field payload wajib diisi")
	}
	if err := sonic.UnmarshalString(raw, &p); err != nil {
		return p, fiber.NewError(fiber.StatusBadRequest, "payload bukan JSON yang valid")
	}

	for key, fhs := range mf.File {
		if len(fhs) == 0 {
			continue
		}
		m := reFieldFile.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		i, _ := strconv.Atoi(m[1])
		j, _ := strconv.Atoi(m[2])
		if i >= len(p.Sections) || j >= len(p.Sections[i].Fields) {
			p.AddUploadError(fmt.Sprintf("sections[%d].fields[%d].file", i, j), "file untuk field yang tidak ada")
			continue
		}
		p.Sections[i].Fields[j].File = storage.FromFileHeader(fhs[0])
	}
	return p, nil
}

// ===================== CREATE =====================
// POST /api/a/forms
func (h *FormController) Create(c *fiber.Ctx) error {
	actor, err := helper.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	req, err := parsePayload(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	form, err := h.Service.Create(c.UserContext(), actor, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Form berhasil dibuat", fiber.Map{"form_id": form.FormID})
}

// ===================== UPDATE (reconcile) =====================
// PUT /api/a/forms/:form_id
func (h *FormController) Update(c *fiber.Ctx) error {
	actor, err := helper.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	req, err := parsePayload(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	d, res, err := h.Service.Update(c.UserContext(), c.Params("form_id"), actor, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Form berhasil diperbarui", fiber.Map{
		"form":     d.Response(),
		"inserted": res.Inserted,
		"updated":  res.Updated,
		"deleted":  res.Deleted,
	})
}

// ===================== DETAIL =====================
// GET /api/a/forms/:form_id
func (h *FormController) Get(c *fiber.Ctx) error {
	d, err := h.Service.Get(c.UserContext(), c.Params("form_id"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", d.Response())
}

// GET /api/public/forms/:form_id (aktif saja)
func (h *FormController) GetActive(c *fiber.Ctx) error {
	d, err := h.Service.GetActive(c.UserContext(), c.Params("form_id"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", d.Response())
}

// ===================== LIST =====================
// GET /api/a/forms?scholarship_id=&is_active=&q=
func (h *FormController) List(c *fiber.Ctx) error {
	var q dto.ListFormQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)

	rows, total, err := h.Service.List(c.UserContext(), q, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	out := make([]dto.FormResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromForm(r))
	}
	return helper.JsonList(c, "ok", out, helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// ===================== DELETE =====================
// DELETE /api/a/forms/:form_id
func (h *FormController) Delete(c *fiber.Ctx) error {
	id := c.Params("form_id")
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Form berhasil dihapus", fiber.Map{"form_id": id})
}

// ===================== SETTINGS =====================
// PATCH /api/a/forms/:form_id/settings
func (h *FormController) UpdateSettings(c *fiber.Ctx) error {
	actor, err := helper.GetPrincipal(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}

	st, err := h.Service.UpdateSettings(c.UserContext(), c.Params("form_id"), actor, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Setting form diperbarui", dto.FromSetting(*st))
}
