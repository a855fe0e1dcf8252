package helper

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kemahasiswaan_backend/internals/configs"
)

// FromFiberError mengubah error hasil Transaction (biasanya *fiber.Error)
// menjadi response JSON konsisten via helper.JsonError.
// Jika bukan *fiber.Error, fallback ke 500 dengan pesan asli.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, err.Error())
}

// FromServiceError memetakan error service ke status HTTP:
// Validation → 422, NotFound → 404, Conflict → 403/409, Storage → 422.
func FromServiceError(c *fiber.Ctx, err error) error {
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		se *StorageError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return JsonValidationErrorMsg(c, ve.Message, ve.Fields)
	case errors.As(err, &nf):
		return JsonError(c, fiber.StatusNotFound, nf.Error())
	case errors.As(err, &ce):
		if ce.Forbidden() {
			return JsonError(c, fiber.StatusForbidden, ce.Message)
		}
		return JsonError(c, fiber.StatusConflict, ce.Message)
	case errors.As(err, &se):
		configs.Log.Warn("storage error", zap.String("op", se.Op), zap.Error(se.Err))
		return JsonValidationErrorMsg(c, "upload file gagal", map[string][]string{"file": {se.Error()}})
	case errors.As(err, &fe):
		return JsonError(c, fe.Code, fe.Message)
	default:
		configs.Log.Error("unhandled service error", zap.String("path", c.Path()), zap.Error(err))
		return JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
	}
}
