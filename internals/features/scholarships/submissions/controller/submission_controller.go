package controller

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/submissions/dto"
	"kemahasiswaan_backend/internals/features/scholarships/submissions/service"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type SubmissionController struct {
	DB      *gorm.DB
	Service *service.Service
}

func NewSubmissionController(db *gorm.DB, fs storage.FileStorage, n mailer.Notifier) *SubmissionController {
	return &SubmissionController{DB: db, Service: service.New(db, fs, n)}
}

// parseSubmit: JSON {"data":{...}} atau multipart: field "data" (JSON) + file data[<key>].
func parseSubmit(c *fiber.Ctx) (dto.SubmitRequest, error) {
	var req dto.SubmitRequest
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if !strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&req); err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "Payload tidak valid")
		}
		return req, nil
	}

	mf, err := c.MultipartForm()
	if err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Multipart tidak valid")
	}
	if v := mf.Value["data"]; len(v) > 0 && strings.TrimSpace(v[0]) != "" {
		if err := sonic.UnmarshalString(v[0], &req.Data); err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "data bukan JSON yang valid")
		}
	}
	req.Files = map[string]*storage.Upload{}
	for key, fhs := range mf.File {
		if len(fhs) == 0 || !strings.HasPrefix(key, "data[") || !strings.HasSuffix(key, "]") {
			continue
		}
		req.Files[key[len("data["):len(key)-1]] = storage.FromFileHeader(fhs[0])
	}
	return req, nil
}

// ===================== SUBMIT =====================
// POST /api/u/forms/:form_id/submissions
func (h *SubmissionController) Submit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	req, err := parseSubmit(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	sub, err := h.Service.Submit(c.UserContext(), c.Params("form_id"), userID, req)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Pendaftaran berhasil dikirim", dto.FromModel(*sub))
}

// ===================== MINE =====================
// GET /api/u/submissions
func (h *SubmissionController) ListMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ParseFiber(c, "submitted_at", "desc", helper.DefaultOpts)

	rows, total, err := h.Service.ListByUser(c.UserContext(), userID, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// ===================== ADMIN =====================
// GET /api/a/forms/:form_id/submissions?status=
func (h *SubmissionController) ListByForm(c *fiber.Ctx) error {
	var q dto.ListSubmissionQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	p := helper.ParseFiber(c, "submitted_at", "desc", helper.AdminOpts)

	rows, total, err := h.Service.ListByForm(c.UserContext(), c.Params("form_id"), q, p)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GET /api/a/submissions/:submission_id
func (h *SubmissionController) Get(c *fiber.Ctx) error {
	sub, err := h.Service.Get(c.UserContext(), c.Params("submission_id"))
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(*sub))
}

// PATCH /api/a/submissions/:submission_id  {status}
func (h *SubmissionController) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if errs := helper.ValidateStruct(&req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	sub, err := h.Service.UpdateStatus(c.UserContext(), c.Params("submission_id"), req.Status)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Status pendaftaran diperbarui", dto.FromModel(*sub))
}
