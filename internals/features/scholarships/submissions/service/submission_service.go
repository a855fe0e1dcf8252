package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kemahasiswaan_backend/internals/configs"
	formModel "kemahasiswaan_backend/internals/features/scholarships/forms/model"
	formService "kemahasiswaan_backend/internals/features/scholarships/forms/service"
	"kemahasiswaan_backend/internals/features/scholarships/submissions/dto"
	"kemahasiswaan_backend/internals/features/scholarships/submissions/model"
	helper "kemahasiswaan_backend/internals/helpers"
	"kemahasiswaan_backend/internals/helpers/mailer"
	"kemahasiswaan_backend/internals/helpers/storage"
)

type Service struct {
	DB       *gorm.DB
	Storage  storage.FileStorage
	Notifier mailer.Notifier
	Now      func() time.Time
}

func New(db *gorm.DB, fs storage.FileStorage, n mailer.Notifier) *Service {
	if n == nil {
		n = mailer.NopNotifier{}
	}
	return &Service{DB: db, Storage: fs, Notifier: n, Now: time.Now}
}

/* =========================================================
   Acceptance window
========================================================= */

func checkAcceptance(d *formService.FormDetail, now time.Time, submitted int64) error {
	if !d.Form.FormIsActive {
		return helper.NewConflict(helper.ConflictInactive, "Form tidak aktif")
	}
	if d.Setting == nil {
		return nil
	}
	switch d.Setting.Closed(now, submitted) {
	case "closed":
		return helper.NewConflict(helper.ConflictClosed, "Form tidak menerima jawaban")
	case "deadline":
		return helper.NewConflict(helper.ConflictDeadline, "Batas waktu pendaftaran sudah lewat")
	case "cap":
		return helper.NewConflict(helper.ConflictCap, "Kuota pendaftaran sudah penuh")
	}
	return nil
}

func countSubmissions(db *gorm.DB, formID string) (int64, error) {
	var n int64
	err := db.Model(&model.FormSubmissionModel{}).Where("form_id = ?", formID).Count(&n).Error
	return n, errors.Wrap(err, "hitung submission")
}

/* =========================================================
   Normalisasi key data
========================================================= */

type fieldIndex struct {
	byKey map[string]formModel.FormFieldModel
	byID  map[string]formModel.FormFieldModel
}

func indexFields(fields []formModel.FormFieldModel) fieldIndex {
	ix := fieldIndex{
		byKey: make(map[string]formModel.FormFieldModel, len(fields)),
		byID:  make(map[string]formModel.FormFieldModel, len(fields)),
	}
	for _, f := range fields {
		ix.byKey[f.DataKey()] = f
		ix.byID[f.FieldID] = f
	}
	return ix
}

// resolve: key posisi atau field_id → key posisi + field (ok=false jika tidak dikenal).
func (ix fieldIndex) resolve(key string) (string, formModel.FormFieldModel, bool) {
	if f, ok := ix.byKey[key]; ok {
		return key, f, true
	}
	if f, ok := ix.byID[key]; ok {
		return f.DataKey(), f, true
	}
	return key, formModel.FormFieldModel{}, false
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// normalizeData: data final (key posisi), snapshot field_id, dan file yang perlu disimpan.
func normalizeData(fields []formModel.FormFieldModel, req dto.SubmitRequest) (map[string]any, map[string]any, map[string]*storage.Upload, error) {
	ix := indexFields(fields)
	verr := helper.NewValidationError("validasi jawaban gagal")

	data := map[string]any{}
	refs := map[string]any{}
	// satu field hanya boleh diisi lewat satu key (posisi atau field_id)
	sources := map[string][]string{}
	for k, v := range req.Data {
		key, f, ok := ix.resolve(strings.TrimSpace(k))
		sources[key] = append(sources[key], k)
		data[key] = v
		if ok {
			refs[key] = f.FieldID
		}
	}
	for _, key := range sortedKeys(sources) {
		if ks := sources[key]; len(ks) > 1 {
			sort.Strings(ks)
			verr.Add("data."+key, "field diisi lebih dari sekali: "+strings.Join(ks, ", "))
		}
	}

	files := map[string]*storage.Upload{}
	fileSources := map[string][]string{}
	for k, up := range req.Files {
		if up == nil {
			continue
		}
		key, f, ok := ix.resolve(strings.TrimSpace(k))
		switch {
		case !ok:
			verr.Add("data["+k+"]", "file untuk field yang tidak ada")
		case f.FieldType != formModel.FieldFile:
			verr.Add("data["+k+"]", f.FieldName+" bukan field file")
		default:
			fileSources[key] = append(fileSources[key], k)
			files[key] = up
			refs[key] = f.FieldID
			if _, exists := data[key]; !exists {
				data[key] = ""
			}
		}
	}

	for _, key := range sortedKeys(fileSources) {
		if ks := fileSources[key]; len(ks) > 1 {
			sort.Strings(ks)
			verr.Add("data["+key+"]", "file dikirim lebih dari sekali: "+strings.Join(ks, ", "))
		}
	}

	// wajib = key ada (string kosong tetap diterima)
	for _, f := range fields {
		if !f.IsRequired {
			continue
		}
		if _, ok := data[f.DataKey()]; !ok {
			verr.Add("data."+f.DataKey(), f.FieldName+" wajib diisi")
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, nil, nil, err
	}
	return data, refs, files, nil
}

/* =========================================================
   SUBMIT
========================================================= */

func (s *Service) Submit(ctx context.Context, formID string, userID uuid.UUID, req dto.SubmitRequest) (*model.FormSubmissionModel, error) {
	db := s.DB.WithContext(ctx)

	// cek awal di luar transaksi supaya penolakan tidak sempat menyimpan file
	d, err := formService.LoadDetail(db, formID)
	if err != nil {
		return nil, err
	}
	n, err := countSubmissions(db, d.Form.FormID)
	if err != nil {
		return nil, err
	}
	if err := checkAcceptance(d, s.Now(), n); err != nil {
		return nil, err
	}

	data, refs, files, err := normalizeData(d.Fields, req)
	if err != nil {
		return nil, err
	}

	stored := make([]string, 0, len(files))
	fileRefs := map[string]any{}
	for key, up := range files {
		ref, err := s.Storage.Store(ctx, storage.DirSubmissionFiles, up)
		if err != nil {
			storage.ReleaseAll(context.Background(), s.Storage, stored)
			return nil, err
		}
		stored = append(stored, ref)
		data[key] = ref
		fileRefs[key] = ref
	}

	sub := model.FormSubmissionModel{
		FormID:      d.Form.FormID,
		UserID:      userID,
		Data:        datatypes.JSONMap(data),
		FieldRefs:   datatypes.JSONMap(refs),
		Files:       datatypes.JSONMap(fileRefs),
		Status:      model.StatusMenunggu,
		SubmittedAt: s.Now(),
	}

	var setting *formModel.FormSettingModel
	err = db.Transaction(func(tx *gorm.DB) error {
		// kunci setting supaya hitungan kuota konsisten antar pendaftar paralel
		var st formModel.FormSettingModel
		lockErr := helper.ForUpdate(tx).Where("form_id = ?", d.Form.FormID).Take(&st).Error
		if lockErr != nil && !errors.Is(lockErr, gorm.ErrRecordNotFound) {
			return errors.Wrap(lockErr, "kunci setting")
		}

		cur, err := formService.LoadDetail(tx, d.Form.FormID)
		if err != nil {
			return err
		}
		n, err := countSubmissions(tx, cur.Form.FormID)
		if err != nil {
			return err
		}
		if err := checkAcceptance(cur, s.Now(), n); err != nil {
			return err
		}
		setting = cur.Setting

		_, err = helper.InsertWithSequence(tx, helper.SubmissionSeq, func(id string) { sub.SubmissionID = id }, &sub)
		return err
	})
	if err != nil {
		storage.ReleaseAll(context.Background(), s.Storage, stored)
		return nil, err
	}

	s.notify(ctx, d.Form, setting, sub)
	return &sub, nil
}

// notify: email ke staf (best-effort, gagal hanya di-log).
func (s *Service) notify(ctx context.Context, form formModel.ScholarshipFormModel, st *formModel.FormSettingModel, sub model.FormSubmissionModel) {
	if st == nil || st.NotifyEmail == nil || strings.TrimSpace(*st.NotifyEmail) == "" {
		return
	}
	err := s.Notifier.NotifySubmission(ctx, mailer.SubmissionNotice{
		To:           *st.NotifyEmail,
		FormID:       form.FormID,
		FormName:     form.FormName,
		SubmissionID: sub.SubmissionID,
		UserID:       sub.UserID.String(),
		SubmittedAt:  sub.SubmittedAt,
	})
	if err != nil {
		configs.Log.Warn("⚠️ gagal kirim notifikasi submission",
			zap.String("form_id", form.FormID),
			zap.String("submission_id", sub.SubmissionID),
			zap.Error(err),
		)
	}
}

/* =========================================================
   STATUS (tanpa aturan transisi)
========================================================= */

func (s *Service) UpdateStatus(ctx context.Context, submissionID string, status string) (*model.FormSubmissionModel, error) {
	st := model.SubmissionStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !st.Valid() {
		verr := helper.NewValidationError("validasi status gagal")
		verr.Add("status", "status tidak dikenal: "+status)
		return nil, verr
	}

	var out model.FormSubmissionModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := findSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.FormSubmissionModel{}).
			Where("submission_id = ?", cur.SubmissionID).
			Updates(map[string]any{"status": st, "submission_updated_at": time.Now()}).Error; err != nil {
			return errors.Wrap(err, "update status")
		}
		return tx.Where("submission_id = ?", cur.SubmissionID).Take(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

/* =========================================================
   READ
========================================================= */

func findSubmission(db *gorm.DB, id string) (*model.FormSubmissionModel, error) {
	var m model.FormSubmissionModel
	if err := db.Where("submission_id = ?", strings.TrimSpace(id)).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewNotFound("Submission", id)
		}
		return nil, errors.Wrap(err, "ambil submission")
	}
	return &m, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.FormSubmissionModel, error) {
	return findSubmission(s.DB.WithContext(ctx), id)
}

var submissionSortable = map[string]string{
	"submitted_at": "submitted_at",
	"status":       "status",
	"id":           "submission_id",
}

func (s *Service) ListByForm(ctx context.Context, formID string, q dto.ListSubmissionQuery, p helper.Params) ([]model.FormSubmissionModel, int64, error) {
	var exists int64
	if err := s.DB.WithContext(ctx).Model(&formModel.ScholarshipFormModel{}).
		Where("form_id = ?", formID).Count(&exists).Error; err != nil {
		return nil, 0, errors.Wrap(err, "cek form")
	}
	if exists == 0 {
		return nil, 0, helper.NewNotFound("Form", formID)
	}

	db := s.DB.WithContext(ctx).Model(&model.FormSubmissionModel{}).Where("form_id = ?", formID)
	if st := strings.ToUpper(strings.TrimSpace(q.Status)); st != "" {
		db = db.Where("status = ?", st)
	}
	return paginate(db, p)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, p helper.Params) ([]model.FormSubmissionModel, int64, error) {
	db := s.DB.WithContext(ctx).Model(&model.FormSubmissionModel{}).Where("user_id = ?", userID)
	return paginate(db, p)
}

func paginate(db *gorm.DB, p helper.Params) ([]model.FormSubmissionModel, int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "hitung submission")
	}
	var rows []model.FormSubmissionModel
	if err := db.Order(p.OrderExpr(submissionSortable, "submitted_at")).
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list submission")
	}
	return rows, total, nil
}
