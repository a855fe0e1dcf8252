package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/configs"
	"kemahasiswaan_backend/internals/features/scholarships/forms/dto"
	"kemahasiswaan_backend/internals/features/scholarships/forms/model"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/storage"
)

// ReconcileResult: ringkasan perubahan field (dipakai log & test).
type ReconcileResult struct {
	Updated  []string
	Inserted []string
	Deleted  []string
	Released []string
}

// Update menerapkan sections/fields hasil edit admin ke form:
//   - validasi penuh dulu; gagal → tidak ada yang berubah dan tidak ada file tersimpan
//   - lampiran baru disimpan sebelum transaksi
//   - dalam satu transaksi: hapus field yang hilang, update field lama (cocok field_id),
//     insert field baru, nomori ulang field_order 1..N, update metadata form
//   - file milik field terhapus / lampiran yang diganti dilepas setelah commit (best-effort)
func (s *Service) Update(ctx context.Context, formID string, actor helper.Principal, req dto.UpdateFormRequest) (*FormDetail, *ReconcileResult, error) {
	if _, err := findForm(s.DB.WithContext(ctx), formID); err != nil {
		return nil, nil, err
	}
	if err := s.validatePayload(ctx, &req); err != nil {
		return nil, nil, err
	}
	refs, stored, err := s.storeFieldFiles(ctx, &req)
	if err != nil {
		return nil, nil, err
	}

	res := &ReconcileResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		form, err := findForm(helper.ForUpdate(tx), formID)
		if err != nil {
			return err
		}

		existing, err := loadFields(tx, form.FormID)
		if err != nil {
			return err
		}
		byID := make(map[string]model.FormFieldModel, len(existing))
		for _, f := range existing {
			byID[f.FieldID] = f
		}

		// field_id yang masih dipakai payload
		keep := map[string]bool{}
		for _, sec := range req.Sections {
			for _, f := range sec.Fields {
				if f.FieldID != nil {
					if _, ok := byID[*f.FieldID]; ok {
						keep[*f.FieldID] = true
					}
				}
			}
		}

		// deletions
		for _, f := range existing {
			if keep[f.FieldID] {
				continue
			}
			res.Deleted = append(res.Deleted, f.FieldID)
			if f.FilePath != nil {
				res.Released = append(res.Released, *f.FilePath)
			}
		}
		if len(res.Deleted) > 0 {
			if err := tx.Where("form_id = ? AND field_id IN ?", form.FormID, res.Deleted).
				Delete(&model.FormFieldModel{}).Error; err != nil {
				return errors.Wrap(err, "hapus field")
			}
		}

		// updates + inserts, order dihitung ulang dari awal
		order := 0
		for i, sec := range req.Sections {
			for j, in := range sec.Fields {
				order++
				newRef, hasNew := refs[fieldPos{i, j}]

				if in.FieldID != nil && keep[*in.FieldID] {
					cur := byID[*in.FieldID]
					applyInput(&cur, sec.Title, in, order)
					switch {
					case hasNew:
						if cur.FilePath != nil {
							res.Released = append(res.Released, *cur.FilePath)
						}
						cur.FilePath = &newRef
					case in.RemoveFile || cur.FieldType != model.FieldFile:
						if cur.FilePath != nil {
							res.Released = append(res.Released, *cur.FilePath)
						}
						cur.FilePath = nil
					}
					if err := tx.Save(&cur).Error; err != nil {
						return errors.Wrapf(err, "update field %s", cur.FieldID)
					}
					res.Updated = append(res.Updated, cur.FieldID)
					continue
				}

				field := model.FormFieldModel{FormID: form.FormID}
				applyInput(&field, sec.Title, in, order)
				if hasNew {
					field.FilePath = &newRef
				}
				id, err := helper.InsertWithSequence(tx, helper.FormFieldSeq, func(id string) { field.FieldID = id }, &field)
				if err != nil {
					return err
				}
				res.Inserted = append(res.Inserted, id)
			}
		}

		upd := map[string]any{
			"form_name":        req.FormName,
			"form_description": req.Description,
			"scholarship_id":   req.ScholarshipID,
			"form_updated_by":  actor.ID,
			"form_updated_at":  time.Now(),
		}
		if req.IsActive != nil {
			upd["form_is_active"] = *req.IsActive
		}
		if err := tx.Model(&model.ScholarshipFormModel{}).Where("form_id = ?", form.FormID).Updates(upd).Error; err != nil {
			return errors.Wrap(err, "update form")
		}
		return nil
	})
	if err != nil {
		storage.ReleaseAll(context.Background(), s.Storage, stored)
		return nil, nil, err
	}

	storage.ReleaseAll(context.Background(), s.Storage, res.Released)
	configs.Log.Info("form reconciled",
		zap.String("form_id", formID),
		zap.Int("updated", len(res.Updated)),
		zap.Int("inserted", len(res.Inserted)),
		zap.Int("deleted", len(res.Deleted)),
	)

	d, err := s.Get(ctx, formID)
	if err != nil {
		return nil, nil, err
	}
	return d, res, nil
}
