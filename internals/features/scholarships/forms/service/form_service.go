package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/features/scholarships/forms/dto"
	"kemahasiswaan_backend/internals/features/scholarships/forms/model"
	submissionModel "kemahasiswaan_backend/internals/features/scholarships/submissions/model"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type Service struct {
	DB      *gorm.DB
	Storage storage.FileStorage
}

func New(db *gorm.DB, fs storage.FileStorage) *Service {
	return &Service{DB: db, Storage: fs}
}

// FormDetail: form + setting + field (urut field_order).
type FormDetail struct {
	Form    model.ScholarshipFormModel
	Setting *model.FormSettingModel
	Fields  []model.FormFieldModel
}

func (d FormDetail) Response() dto.FormResponse {
	return dto.FromFormDetail(d.Form, d.Setting, d.Fields)
}

/* =========================================================
   Validasi payload (semua pelanggaran sekaligus)
========================================================= */

func fieldPath(i, j int, name string) string {
	return fmt.Sprintf("sections[%d].fields[%d].%s", i, j, name)
}

func (s *Service) validatePayload(ctx context.Context, p *dto.FormPayload) error {
	p.Normalize()
	verr := helper.NewValidationError("validasi form gagal")
	verr.Merge(helper.ValidateStruct(p))
	verr.Merge(p.UploadErrors)

	if p.ScholarshipID != "" {
		var n int64
		if err := s.DB.WithContext(ctx).Table("scholarships").
			Where("scholarship_id = ?", p.ScholarshipID).Count(&n).Error; err != nil {
			return errors.Wrap(err, "cek beasiswa")
		}
		if n == 0 {
			verr.Add("scholarship_id", "scholarship_id tidak ditemukan")
		}
	}

	seen := map[string]string{}
	for i, sec := range p.Sections {
		for j, f := range sec.Fields {
			if f.File != nil && f.FieldType != string(model.FieldFile) {
				verr.Add(fieldPath(i, j, "file"), "file hanya boleh untuk field_type file")
			}
			if f.FieldID == nil {
				continue
			}
			if prev, dup := seen[*f.FieldID]; dup {
				verr.Add(fieldPath(i, j, "field_id"), "field_id duplikat dengan "+prev)
				continue
			}
			seen[*f.FieldID] = fieldPath(i, j, "field_id")
		}
	}
	return verr.OrNil()
}

type fieldPos struct{ S, F int }

// storeFieldFiles menyimpan semua lampiran baru sebelum transaksi dimulai.
// Gagal di tengah → file yang sudah tersimpan dihapus lagi.
func (s *Service) storeFieldFiles(ctx context.Context, p *dto.FormPayload) (map[fieldPos]string, []string, error) {
	refs := map[fieldPos]string{}
	var stored []string
	for i, sec := range p.Sections {
		for j, f := range sec.Fields {
			if f.File == nil {
				continue
			}
			ref, err := s.Storage.Store(ctx, storage.DirFormTemplates, f.File)
			if err != nil {
				storage.ReleaseAll(context.Background(), s.Storage, stored)
				return nil, nil, err
			}
			refs[fieldPos{i, j}] = ref
			stored = append(stored, ref)
		}
	}
	return refs, stored, nil
}

func applyInput(m *model.FormFieldModel, sectionTitle string, f dto.FieldInput, order int) {
	m.SectionTitle = sectionTitle
	m.FieldName = f.FieldName
	m.FieldType = model.FieldType(f.FieldType)
	m.IsRequired = f.IsRequired != nil && *f.IsRequired
	m.Options = f.Options
	m.FieldOrder = order
}

/* =========================================================
   CREATE
========================================================= */

func (s *Service) Create(ctx context.Context, actor helper.Principal, req dto.CreateFormRequest) (*model.ScholarshipFormModel, error) {
	if err := s.validatePayload(ctx, &req); err != nil {
		return nil, err
	}
	refs, stored, err := s.storeFieldFiles(ctx, &req)
	if err != nil {
		return nil, err
	}

	form := model.ScholarshipFormModel{
		ScholarshipID:   req.ScholarshipID,
		FormName:        req.FormName,
		FormDescription: req.Description,
		FormIsActive:    true,
		FormCreatedBy:   &actor.ID,
		FormUpdatedBy:   &actor.ID,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := helper.InsertWithSequence(tx, helper.FormSeq, func(id string) { form.FormID = id }, &form); err != nil {
			return err
		}

		setting := model.FormSettingModel{FormID: form.FormID, AcceptResponses: true}
		if _, err := helper.InsertWithSequence(tx, helper.FormSettingSeq, func(id string) { setting.SettingID = id }, &setting); err != nil {
			return err
		}

		order := 0
		for i, sec := range req.Sections {
			for j, f := range sec.Fields {
				order++
				field := model.FormFieldModel{FormID: form.FormID}
				applyInput(&field, sec.Title, f, order)
				if ref, ok := refs[fieldPos{i, j}]; ok {
					field.FilePath = &ref
				}
				if _, err := helper.InsertWithSequence(tx, helper.FormFieldSeq, func(id string) { field.FieldID = id }, &field); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		storage.ReleaseAll(context.Background(), s.Storage, stored)
		return nil, err
	}
	return &form, nil
}

/* =========================================================
   READ
========================================================= */

func findForm(db *gorm.DB, formID string) (*model.ScholarshipFormModel, error) {
	var f model.ScholarshipFormModel
	if err := db.Where("form_id = ?", strings.TrimSpace(formID)).Take(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewNotFound("Form", formID)
		}
		return nil, errors.Wrap(err, "ambil form")
	}
	return &f, nil
}

func loadFields(db *gorm.DB, formID string) ([]model.FormFieldModel, error) {
	var fields []model.FormFieldModel
	if err := db.Where("form_id = ?", formID).Order("field_order ASC").Find(&fields).Error; err != nil {
		return nil, errors.Wrap(err, "ambil field")
	}
	return fields, nil
}

func findSetting(db *gorm.DB, formID string) (*model.FormSettingModel, error) {
	var st model.FormSettingModel
	err := db.Where("form_id = ?", formID).Take(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "ambil setting")
	}
	return &st, nil
}

// LoadDetail dipakai juga oleh submission service (di dalam transaksi).
func LoadDetail(db *gorm.DB, formID string) (*FormDetail, error) {
	f, err := findForm(db, formID)
	if err != nil {
		return nil, err
	}
	st, err := findSetting(db, f.FormID)
	if err != nil {
		return nil, err
	}
	fields, err := loadFields(db, f.FormID)
	if err != nil {
		return nil, err
	}
	return &FormDetail{Form: *f, Setting: st, Fields: fields}, nil
}

func (s *Service) Get(ctx context.Context, formID string) (*FormDetail, error) {
	return LoadDetail(s.DB.WithContext(ctx), formID)
}

// GetActive: tampilan pendaftar; form nonaktif dianggap tidak ada.
func (s *Service) GetActive(ctx context.Context, formID string) (*FormDetail, error) {
	d, err := s.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !d.Form.FormIsActive {
		return nil, helper.NewNotFound("Form", formID)
	}
	return d, nil
}

var formSortable = map[string]string{
	"created_at": "form_created_at",
	"name":       "form_name",
	"id":         "form_id",
}

func (s *Service) List(ctx context.Context, q dto.ListFormQuery, p helper.Params) ([]model.ScholarshipFormModel, int64, error) {
	db := s.DB.WithContext(ctx).Model(&model.ScholarshipFormModel{})
	if sid := strings.TrimSpace(q.ScholarshipID); sid != "" {
		db = db.Where("scholarship_id = ?", sid)
	}
	if q.IsActive != nil {
		db = db.Where("form_is_active = ?", *q.IsActive)
	}
	if kw := strings.TrimSpace(q.Q); kw != "" {
		db = db.Where("LOWER(form_name) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "hitung form")
	}
	var rows []model.ScholarshipFormModel
	if err := db.Order(p.OrderExpr(formSortable, "created_at")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list form")
	}
	return rows, total, nil
}

/* =========================================================
   DELETE (cascade submission, field, setting)
========================================================= */

func (s *Service) Delete(ctx context.Context, formID string) error {
	var released []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := findForm(helper.ForUpdate(tx), formID)
		if err != nil {
			return err
		}

		fields, err := loadFields(tx, f.FormID)
		if err != nil {
			return err
		}
		for _, fl := range fields {
			if fl.FilePath != nil {
				released = append(released, *fl.FilePath)
			}
		}

		var subs []submissionModel.FormSubmissionModel
		if err := tx.Select("submission_id", "files").Where("form_id = ?", f.FormID).Find(&subs).Error; err != nil {
			return errors.Wrap(err, "ambil submission")
		}
		for _, sub := range subs {
			for _, v := range sub.Files {
				if ref, ok := v.(string); ok {
					released = append(released, ref)
				}
			}
		}

		steps := []struct {
			what  string
			model any
		}{
			{"submission", &submissionModel.FormSubmissionModel{}},
			{"field", &model.FormFieldModel{}},
			{"setting", &model.FormSettingModel{}},
			{"form", &model.ScholarshipFormModel{}},
		}
		for _, st := range steps {
			if err := tx.Where("form_id = ?", f.FormID).Delete(st.model).Error; err != nil {
				return errors.Wrapf(err, "hapus %s", st.what)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	storage.ReleaseAll(context.Background(), s.Storage, released)
	return nil
}

/* =========================================================
   SETTINGS
========================================================= */

func (s *Service) UpdateSettings(ctx context.Context, formID string, actor helper.Principal, req dto.UpdateSettingsRequest) (*model.FormSettingModel, error) {
	verr := helper.NewValidationError("validasi setting gagal")
	if v, ok := req.MaxSubmissions.Get(); ok && v != nil && *v < 1 {
		verr.Add("max_submissions", "max_submissions minimal 1")
	}
	if v, ok := req.AcceptResponses.Get(); ok && v == nil {
		verr.Add("accept_responses", "accept_responses tidak boleh null")
	}
	if v, ok := req.NotifyEmail.Get(); ok && v != nil && strings.TrimSpace(*v) != "" {
		if err := helper.Validator().Var(strings.TrimSpace(*v), "email"); err != nil {
			verr.Add("notify_email", "notify_email harus alamat email yang valid")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var out model.FormSettingModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := findForm(helper.ForUpdate(tx), formID)
		if err != nil {
			return err
		}
		st, err := findSetting(tx, f.FormID)
		if err != nil {
			return err
		}
		if st == nil {
			// form lama tanpa setting → buat default dulu
			st = &model.FormSettingModel{FormID: f.FormID, AcceptResponses: true}
			if _, err := helper.InsertWithSequence(tx, helper.FormSettingSeq, func(id string) { st.SettingID = id }, st); err != nil {
				return err
			}
		}

		upd := map[string]any{}
		if v, ok := req.AcceptResponses.Get(); ok {
			upd["accept_responses"] = *v
		}
		if v, ok := req.SubmissionDeadline.Get(); ok {
			upd["submission_deadline"] = v
		}
		if v, ok := req.MaxSubmissions.Get(); ok {
			upd["max_submissions"] = v
		}
		if v, ok := req.NotifyEmail.Get(); ok {
			if v != nil && strings.TrimSpace(*v) != "" {
				e := strings.TrimSpace(*v)
				upd["notify_email"] = &e
			} else {
				upd["notify_email"] = nil
			}
		}
		if len(upd) > 0 {
			upd["setting_updated_at"] = time.Now()
			if err := tx.Model(&model.FormSettingModel{}).Where("setting_id = ?", st.SettingID).Updates(upd).Error; err != nil {
				return errors.Wrap(err, "update setting")
			}
			if err := tx.Model(&model.ScholarshipFormModel{}).Where("form_id = ?", f.FormID).
				Updates(map[string]any{"form_updated_by": actor.ID, "form_updated_at": time.Now()}).Error; err != nil {
				return errors.Wrap(err, "update form")
			}
		}

		return tx.Where("setting_id = ?", st.SettingID).Take(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
